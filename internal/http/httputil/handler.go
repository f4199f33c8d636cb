package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is implemented by each API surface (pools, quotes, swaps,
// liquidity, bank). Root names the path segment under the versioned groups;
// SetRoutes attaches the handler's endpoints to the public, private and
// admin route groups.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}
