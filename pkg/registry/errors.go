/*
 * Copyright 2025 The Daemondex Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package registry

import (
	"errors"
)

var (
	// ErrMissingURL is returned when an announcement omits the daemon URL.
	ErrMissingURL = errors.New("url is required")

	// ErrMissingOwner is returned when an announcement omits the owner name.
	ErrMissingOwner = errors.New("owner is required")

	// ErrInvalidURL is returned when the announced URL is not a usable
	// http or https endpoint.
	ErrInvalidURL = errors.New("url must be a valid http or https endpoint")

	errDuplicateSeedURL = errors.New("duplicate seed url")
	errDuplicateSeedID  = errors.New("duplicate seed id")
)
