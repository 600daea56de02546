// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"regexp"
	"strconv"
	"strings"
)

// progressPattern accepts "pg: 12", "pg 12", "pg12" and "12".
var progressPattern = regexp.MustCompile(`^(?:pg:\s*|pg\s+|pg)?(\d+)$`)

// ProgressValue is the result of parsing a progress token.
type ProgressValue struct {
	Pages int
	Raw   string
}

// ParseProgress parses a progress token. Surrounding whitespace is ignored.
// Anything outside the grammar returns ErrInvalidProgressValue.
func ParseProgress(text string) (ProgressValue, error) {
	raw := strings.TrimSpace(text)
	m := progressPattern.FindStringSubmatch(raw)
	if m == nil {
		return ProgressValue{}, Errorf(CodeInvalidProgressValue, "%q is not a page number, use pg:<number>", raw)
	}

	pages, err := strconv.Atoi(m[1])
	if err != nil {
		// digits only, so this is an overflow
		return ProgressValue{}, Errorf(CodeInvalidProgressValue, "%q is out of range", raw)
	}
	return ProgressValue{Pages: pages, Raw: raw}, nil
}
