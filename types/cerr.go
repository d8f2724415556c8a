// Package types
package types

import (
	"errors"
)

var ErrRecordExist = errors.New("record exist")
var ErrRecordNotFound = errors.New("record not found")
