package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parfumerie/internal/checkout"
	"parfumerie/internal/domain"
)

func (h *api) openSession(c *gin.Context) {
	token, _, err := h.deps.Sessions.Open(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Token: token, ExpiresIn: h.deps.Sessions.TTLSeconds()})
}

func (h *api) closeSession(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(msgMissingSession, ""))
		return
	}
	if err := h.deps.Sessions.Close(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *api) listPerfumes(c *gin.Context) {
	perfumes, err := h.deps.Catalogue.ListAvailable(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]perfumeResponse, 0, len(perfumes))
	for _, p := range perfumes {
		out = append(out, toPerfumeResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "count": len(out)})
}

func (h *api) getPerfume(c *gin.Context) {
	p, err := h.deps.Catalogue.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPerfumeResponse(*p))
}

func (h *api) listCategories(c *gin.Context) {
	cats, err := h.deps.Catalogue.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"all": domain.CategoryAll, "results": cats})
}

func (h *api) orderQRCode(c *gin.Context) {
	png, err := h.deps.Storefront.OrderQRCode(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *api) getCart(c *gin.Context) {
	crt, err := h.deps.Storefront.Cart(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *api) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody, ""))
		return
	}
	crt, err := h.deps.Storefront.AddPerfume(c.Request.Context(), sessionIDFrom(c), req.PerfumeID, quantityOrOne(req.Quantity))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *api) addBouquet(c *gin.Context) {
	var req addBouquetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody, ""))
		return
	}
	crt, err := h.deps.Storefront.AddBouquet(c.Request.Context(), sessionIDFrom(c),
		req.PerfumeIDs, req.GiftMessage, quantityOrOne(req.Quantity), req.IsGift)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *api) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody, ""))
		return
	}
	crt, err := h.deps.Storefront.UpdateQuantity(c.Request.Context(), sessionIDFrom(c), c.Param("lineId"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *api) removeItem(c *gin.Context) {
	crt, err := h.deps.Storefront.RemoveItem(c.Request.Context(), sessionIDFrom(c), c.Param("lineId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *api) clearCart(c *gin.Context) {
	crt, err := h.deps.Storefront.ClearCart(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *api) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidBody, ""))
		return
	}
	conf, err := h.deps.Storefront.Checkout(c.Request.Context(), sessionIDFrom(c), req.Customer, req.Delivery)
	if err != nil {
		writeErrorWith(c, err, msgOrderFailed)
		return
	}
	c.JSON(http.StatusCreated, checkoutResponse{
		Next:         checkout.PageConfirmation,
		Confirmation: toConfirmationResponse(conf),
	})
}

func quantityOrOne(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}
