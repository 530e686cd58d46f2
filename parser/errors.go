// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

// LiteralError indicates that a literal token could not be decoded.
//
// The offset is the code point position within the token text at which
// decoding failed.
type LiteralError struct {
	Offset  int32
	Message string
}

// Error implements the error interface method.
func (e *LiteralError) Error() string {
	return e.Message
}
