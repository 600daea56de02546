// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import (
	"strconv"
	"strings"
)

// ParseStartParams reads "in <N>" and "for <N>" from the start arguments,
// in either order. Missing, unparseable or negative values fall back to
// the policy defaults for that parameter.
func ParseStartParams(args []string, policy Policy) SessionConfig {
	cfg := policy.DefaultConfig()

	tokens := make([]string, 0, len(args))
	for _, arg := range args {
		tokens = append(tokens, strings.Fields(arg)...)
	}

	for i := 0; i+1 < len(tokens); i++ {
		keyword := strings.ToLower(tokens[i])
		if keyword != "in" && keyword != "for" {
			continue
		}

		n, err := strconv.Atoi(tokens[i+1])
		if err != nil || n < 0 {
			continue
		}

		switch keyword {
		case "in":
			cfg.StartInMinutes = n
		case "for":
			cfg.DurationMinutes = n
		}
		i++
	}

	return cfg
}
