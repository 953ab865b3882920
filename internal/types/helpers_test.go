package types

import "borrowck/internal/source"

var zeroSpan = source.Span{}
