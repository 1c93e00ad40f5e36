package recipe

import "errors"

var (
	ErrInvalidRecipe  = errors.New("invalid recipe")
	ErrUnknownVariant = errors.New("unknown variant")
	ErrImport         = errors.New("dockerfile import failed")
)
