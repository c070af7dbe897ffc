// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"github.com/creachadair/jstream/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return `"` + string(escape.Quote(mem.S(src))) + `"` }
