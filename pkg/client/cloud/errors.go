package cloud

import "errors"

var (
	ErrMissingToken    = errors.New("missing digitalocean access token")
	ErrDropletNotFound = errors.New("droplet not found")
	ErrNoPublicAddress = errors.New("droplet has no public address")
)
