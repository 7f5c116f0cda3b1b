package parser

import "errors"

var errTypeNotDefined = errors.New("type of file is not defined")
