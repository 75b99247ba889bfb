package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/gostack-labs/storefront/internal/domain/order"
	"github.com/gostack-labs/storefront/internal/domain/product"
)

type createOrderRequest struct {
	CustomerID string                `json:"customer_id"`
	Products   []orderProductRequest `json:"products"`
}

type orderProductRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	Customer  customerResponse    `json:"customer"`
	Items     []orderItemResponse `json:"ordered_items"`
	Total     float64             `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id required")
		return
	}

	products := make([]order.ProductRequest, len(req.Products))
	for i, p := range req.Products {
		products[i] = order.ProductRequest{ID: p.ID, Quantity: p.Quantity}
	}

	o, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		CustomerID: req.CustomerID,
		Products:   products,
	})
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainToOrderResponse(o))
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domainToOrderResponse(o))
}

// mapOrderError converts order creation errors to HTTP responses. Validation
// failures map to 4xx; anything else is an internal error.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cnfErr *order.CustomerNotFoundError
		ipErr  *order.InvalidProductIDError
		pnfErr *order.ProductNotFoundError
		iqErr  *order.InvalidQuantityError
		isErr  *product.InsufficientStockError
	)

	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &iqErr):
		writeError(w, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &cnfErr):
		writeError(w, http.StatusNotFound, cnfErr.Error())
	case errors.As(err, &ipErr):
		writeError(w, http.StatusUnprocessableEntity, ipErr.Error())
	case errors.As(err, &pnfErr):
		writeError(w, http.StatusUnprocessableEntity, pnfErr.Error())
	case errors.As(err, &isErr):
		writeError(w, http.StatusUnprocessableEntity, isErr.Error())
	default:
		writeInternalError(w, r, err)
	}
}

func domainToOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
		}
	}
	return orderResponse{
		ID:        o.ID,
		Customer:  domainToCustomerResponse(&o.Customer),
		Items:     items,
		Total:     o.Total.InexactFloat64(),
		CreatedAt: o.CreatedAt,
	}
}
