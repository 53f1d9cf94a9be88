package handlers

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/nfnt/resize"
)

const adminProductsPerPage = 20

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	// Admin sees every product, inactive included.
	products, err := h.Store.GetAllProducts(adminProductsPerPage, (page-1)*adminProductsPerPage)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	total, err := h.Store.GetTotalProductsCount()
	if err != nil {
		http.Error(w, "Error fetching product count", http.StatusInternalServerError)
		return
	}
	totalPages := (total + adminProductsPerPage - 1) / adminProductsPerPage
	if totalPages == 0 {
		totalPages = 1
	}

	session, _ := h.SessionStore.Get(r, SessionName)
	data := baseData(session)
	data["Products"] = products
	data["Page"] = page
	data["TotalPages"] = totalPages
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "admin_products.html", data)
}

func (h *AdminHandler) ProductForm(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	var product *models.Product
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		product, err = h.Store.GetProductByID(id)
		if err != nil {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
	}

	categories, err := h.Store.GetActiveCategories()
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}

	data := baseData(session)
	data["Product"] = product
	data["Categories"] = categories
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "admin_product_form.html", data)
}

// SaveProduct creates or updates a product from the admin form, including the
// optional image upload.
func (h *AdminHandler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}

	id, _ := strconv.ParseInt(r.FormValue("id"), 10, 64)
	categoryID, _ := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	name := r.FormValue("name")
	price, priceErr := strconv.ParseFloat(r.FormValue("price"), 64)
	originalPrice, _ := strconv.ParseFloat(r.FormValue("original_price"), 64)
	stock, stockErr := strconv.Atoi(r.FormValue("stock_quantity"))

	fieldErrors := make(map[string]string)
	if name == "" {
		fieldErrors["name"] = "Name is required."
	}
	if categoryID <= 0 {
		fieldErrors["category"] = "Category is required."
	}
	if priceErr != nil || price <= 0 {
		fieldErrors["price"] = "Price must be a positive number."
	}
	if stockErr != nil || stock < 0 {
		fieldErrors["stock"] = "Stock must be zero or more."
	}

	if len(fieldErrors) > 0 {
		for _, msg := range fieldErrors {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		session.Save(r, w)
		http.Redirect(w, r, "/admin/products/edit", http.StatusSeeOther)
		return
	}

	product := &models.Product{
		ID:            id,
		CategoryID:    categoryID,
		Name:          name,
		Slug:          slugify(name),
		Description:   r.FormValue("description"),
		Notes:         r.FormValue("notes"),
		Sizes:         r.FormValue("sizes"),
		Price:         price,
		OriginalPrice: originalPrice,
		StockQuantity: stock,
		IsFeatured:    r.FormValue("is_featured") != "",
		IsActive:      r.FormValue("is_active") != "",
	}

	var err error
	if id == 0 {
		err = h.Store.CreateProduct(product)
	} else {
		err = h.Store.UpdateProduct(product)
	}
	if err != nil {
		slog.Error("Failed to save product", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving product."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}

	if filename, ok := h.saveUploadedImage(r, session); ok {
		if err := h.Store.UpdateProductImage(product.ID, filename); err != nil {
			slog.Error("Failed to store product image path", "error", err)
		}
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Product saved."})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// DeactivateProduct hides a product from the storefront. Rows are kept so
// existing order items stay valid.
func (h *AdminHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid ID."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}

	if err := h.Store.DeactivateProduct(id); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error removing product."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Product removed from catalog."})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// saveUploadedImage decodes, downsizes, and stores the optional "image" form
// file, returning the public path. Returns ok=false when no usable image was
// uploaded; decode problems flash an error but do not fail the save.
func (h *AdminHandler) saveUploadedImage(r *http.Request, session *sessions.Session) (string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", false
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	default:
		session.AddFlash(FlashMessage{Type: "error", Message: "Unsupported image format. Only PNG, JPG, JPEG are allowed."})
		return "", false
	}
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to decode image."})
		return "", false
	}

	// Max width 800px, aspect ratio preserved.
	resized := resize.Resize(800, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	uploadPath := filepath.Join(h.UploadsDir, filename)
	out, err := os.Create(uploadPath)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving image file."})
		return "", false
	}
	defer out.Close()
	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: 80}); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error encoding image."})
		return "", false
	}
	return "/static/uploads/" + filename, true
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9-]+`)

// slugify builds the URL slug used for product detail lookups.
func slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugCleanup.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
