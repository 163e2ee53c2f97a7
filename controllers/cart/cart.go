// Package cartControllers mirrors signed-in shoppers' carts so they follow
// the shopper across devices. The client stays the source of truth.
package cartControllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/cartstore"
	"github.com/Ashish5180/vibe-bites/client/cart"
	"github.com/Ashish5180/vibe-bites/pricing"
	"github.com/Ashish5180/vibe-bites/response"
)

const maxCartLines = 100

type cartView struct {
	Cart   cart.State     `json:"cart"`
	Count  int            `json:"count"`
	Totals pricing.Totals `json:"totals"`
}

func view(s cart.State) cartView {
	if s.Items == nil {
		s.Items = []cart.LineItem{}
	}
	return cartView{Cart: s, Count: s.Count(), Totals: s.Totals()}
}

// PUT /api/cart/sync
func SyncCart(store cartstore.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var state cart.State
		if err := c.ShouldBindJSON(&state); err != nil {
			response.Invalid(c, err)
			return
		}
		if len(state.Items) > maxCartLines {
			response.BadRequest(c, "Cart has too many items")
			return
		}

		saved, err := store.Put(c.Request.Context(), user.ID, state)
		if err != nil {
			log.Error("cart sync failed", zap.Uint("user_id", user.ID), zap.Error(err))
			response.ServerError(c, "Error syncing cart")
			return
		}
		response.OKMessage(c, "Cart synced", view(saved))
	}
}

// GET /api/cart
func GetCart(store cartstore.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		state, err := store.Get(c.Request.Context(), user.ID)
		if err != nil && !errors.Is(err, cartstore.ErrNotFound) {
			log.Error("cart fetch failed", zap.Uint("user_id", user.ID), zap.Error(err))
			response.ServerError(c, "Error fetching cart")
			return
		}
		response.OK(c, view(state))
	}
}

// DELETE /api/cart
func ClearCart(store cartstore.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		if err := store.Delete(c.Request.Context(), user.ID); err != nil {
			log.Error("cart clear failed", zap.Uint("user_id", user.ID), zap.Error(err))
			response.ServerError(c, "Error clearing cart")
			return
		}
		response.OKMessage(c, "Cart cleared", view(cart.State{}))
	}
}

// GET /api/admin/users/:id/cart
func GetUserCart(store cartstore.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}

		state, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, cartstore.ErrNotFound) {
			response.NotFound(c, "Cart not found")
			return
		}
		if err != nil {
			log.Error("admin cart fetch failed", zap.Uint("user_id", id), zap.Error(err))
			response.ServerError(c, "Error fetching cart")
			return
		}
		response.OK(c, view(state))
	}
}
