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

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/cel-core/common/types"
)

// ParseIntLiteral decodes an integer token into an int64 constant.
//
// The token may carry a leading minus sign and a 0x prefix for hexadecimal
// values. A minus sign ahead of the prefix negates the hexadecimal value,
// whereas a sign embedded after the prefix is malformed.
func ParseIntLiteral(text string) (types.Int, error) {
	neg := false
	digits := text
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	base := 10
	if strings.HasPrefix(digits, "0x") {
		base = 16
		digits = digits[2:]
	}
	// A sign is only permitted ahead of the hex prefix.
	if digits == "" || strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return 0, &LiteralError{Message: "invalid int literal"}
	}
	if neg {
		digits = "-" + digits
	}
	i, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, &LiteralError{Message: "invalid int literal"}
	}
	return types.Int(i), nil
}

// ParseUintLiteral decodes an unsigned integer token into a uint64 constant.
//
// The token must end with a 'u' or 'U' suffix and may carry a 0x prefix for
// hexadecimal values.
func ParseUintLiteral(text string) (types.Uint, error) {
	if !strings.HasSuffix(text, "u") && !strings.HasSuffix(text, "U") {
		return 0, &LiteralError{
			Offset:  int32(utf8.RuneCountInString(text)),
			Message: "invalid uint literal",
		}
	}
	base := 10
	digits := text[:len(text)-1]
	if strings.HasPrefix(digits, "0x") {
		base = 16
		digits = digits[2:]
	}
	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, &LiteralError{Message: "invalid uint literal"}
	}
	return types.Uint(u), nil
}

// ParseDoubleLiteral decodes a floating point token into a double constant.
//
// NaN and infinity representations parse through to their IEEE-754 values.
func ParseDoubleLiteral(text string) (types.Double, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &LiteralError{Message: "invalid double literal"}
	}
	return types.Double(f), nil
}

// ParseStringLiteral decodes a quoted string token into a string constant.
//
// The token may carry an 'r' or 'R' prefix marking a raw literal whose escape
// sequences are preserved verbatim, and may use single, double, or triple
// quoted forms.
func ParseStringLiteral(text string) (types.String, error) {
	s, err := unescape(text, false)
	if err != nil {
		return "", shiftLiteralError(err, bodyOffset(text, 0))
	}
	return types.String(s), nil
}

// ParseBytesLiteral decodes a bytes token into a bytes constant.
//
// The token must carry a 'b' or 'B' prefix which may be combined with a raw
// literal prefix in either order.
func ParseBytesLiteral(text string) (types.Bytes, error) {
	trimmed := ""
	switch {
	case strings.HasPrefix(text, "b"), strings.HasPrefix(text, "B"):
		trimmed = text[1:]
	case len(text) > 1 &&
		(text[0] == 'r' || text[0] == 'R') &&
		(text[1] == 'b' || text[1] == 'B'):
		trimmed = text[0:1] + text[2:]
	default:
		return nil, &LiteralError{Message: "invalid bytes literal"}
	}
	b, err := unescape(trimmed, true)
	if err != nil {
		return nil, shiftLiteralError(err, bodyOffset(text, 1))
	}
	return types.Bytes(b), nil
}

// bodyOffset computes the code point offset of the literal body within the
// token, accounting for raw and bytes prefixes and the quote style.
func bodyOffset(text string, maxPrefix int32) int32 {
	offset := int32(0)
	rest := text
	for offset < maxPrefix+1 && len(rest) > 0 {
		switch rest[0] {
		case 'b', 'B', 'r', 'R':
			offset++
			rest = rest[1:]
			continue
		}
		break
	}
	if strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, "'''") {
		return offset + 3
	}
	return offset + 1
}

// shiftLiteralError rebases a literal decoding error from the body of the
// literal onto the token as a whole.
func shiftLiteralError(err error, offset int32) error {
	if lit, ok := err.(*LiteralError); ok {
		return &LiteralError{Offset: lit.Offset + offset, Message: lit.Message}
	}
	if err != nil {
		return &LiteralError{Message: err.Error()}
	}
	return err
}
