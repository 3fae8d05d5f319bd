package staff

import "errors"

var (
	ErrBankRequired    = errors.New("bank is required to resolve a bank manager")
	ErrDirectoryFailed = errors.New("staff directory unavailable")
)
