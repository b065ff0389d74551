package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a group of routes mounted by app.Application on the shared router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
