package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
)

const adminOrdersPerPage = 20

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	orders, err := h.Store.GetAllOrders(adminOrdersPerPage, (page-1)*adminOrdersPerPage)
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}
	total, err := h.Store.GetTotalOrdersCount()
	if err != nil {
		http.Error(w, "Error fetching total order count", http.StatusInternalServerError)
		return
	}
	totalPages := (total + adminOrdersPerPage - 1) / adminOrdersPerPage
	if totalPages == 0 {
		totalPages = 1
	}

	session, _ := h.SessionStore.Get(r, SessionName)
	data := baseData(session)
	data["Orders"] = orders
	data["Statuses"] = models.OrderStatuses
	data["Page"] = page
	data["TotalPages"] = totalPages
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "admin_orders.html", data)
}

// UpdateOrderStatus moves an order through its lifecycle. The status value is
// checked against the known set before touching the database.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	status := r.FormValue("status")
	if !slices.Contains(models.OrderStatuses, status) {
		session.AddFlash(FlashMessage{Type: "error", Message: "Unknown order status."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/orders", http.StatusSeeOther)
		return
	}

	if err := h.Store.UpdateOrderStatus(id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			session.AddFlash(FlashMessage{Type: "error", Message: "Order not found."})
		} else {
			slog.Error("Failed to update order status", "order_id", id, "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Error updating order."})
		}
		session.Save(r, w)
		http.Redirect(w, r, "/admin/orders", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Order updated."})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/orders", http.StatusSeeOther)
}
