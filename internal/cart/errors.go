package cart

import "errors"

// ErrEmptyCart is returned by Checkout on an empty cart. State is unchanged.
var ErrEmptyCart = errors.New("cart is empty")
