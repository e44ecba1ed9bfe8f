package io

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	// Console errors
	ErrNoOutput = errors.New(f("console has no output"))
)
