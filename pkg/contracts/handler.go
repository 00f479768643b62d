// Package contracts holds what the application shell needs from the
// feature packages it mounts.
package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a feature's routes on a shared router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
