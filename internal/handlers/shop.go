package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const productsPerPage = 12

type ShopHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// Home renders the landing page: featured products and category tiles.
func (h *ShopHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	featured, err := h.Store.GetProducts(store.ProductFilter{FeaturedOnly: true, Limit: 4})
	if err != nil {
		slog.Error("Failed to fetch featured products", "error", err)
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	categories, err := h.Store.GetActiveCategories()
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, SessionName)
	data := baseData(session)
	data["Featured"] = featured
	data["Categories"] = categories
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "home.html", data)
}

// List is the shop page: category/search/sort filters with pagination.
func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categorySlug := q.Get("category")
	search := q.Get("search")
	sortBy := q.Get("sort")
	if sortBy == "" {
		sortBy = "newest"
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	filter := store.ProductFilter{
		Search: search,
		Sort:   sortBy,
		Limit:  productsPerPage,
		Offset: (page - 1) * productsPerPage,
	}

	var activeCategory *models.Category
	if categorySlug != "" {
		cat, err := h.Store.GetCategoryBySlug(categorySlug)
		if err == nil {
			filter.CategoryID = cat.ID
			activeCategory = cat
		}
		// Unknown category slug falls through to the unfiltered listing.
	}

	total, err := h.Store.CountProducts(filter)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	totalPages := (total + productsPerPage - 1) / productsPerPage

	// Pages past the end degrade to an empty listing, no crash.
	products, err := h.Store.GetProducts(filter)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}

	categories, err := h.Store.GetActiveCategories()
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, SessionName)
	data := baseData(session)
	data["Products"] = products
	data["Categories"] = categories
	data["ActiveCategory"] = activeCategory
	data["CategorySlug"] = categorySlug
	data["Search"] = search
	data["Sort"] = sortBy
	data["SortKeys"] = store.SortKeys
	data["Total"] = total
	data["Page"] = page
	data["TotalPages"] = totalPages
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "shop.html", data)
}

// Detail shows one product by slug and bumps its view counter.
func (h *ShopHandler) Detail(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		http.Redirect(w, r, "/shop", http.StatusSeeOther)
		return
	}

	session, _ := h.SessionStore.Get(r, SessionName)

	product, err := h.Store.GetProductBySlug(slug)
	if errors.Is(err, store.ErrNotFound) {
		session.AddFlash(FlashMessage{Type: "error", Message: "Product not found"})
		session.Save(r, w)
		http.Redirect(w, r, "/shop", http.StatusSeeOther)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}

	// Observable side effect of the read; lost updates under concurrent views
	// are tolerated.
	if err := h.Store.IncrementProductViews(product.ID); err != nil {
		slog.Warn("Failed to increment product views", "product_id", product.ID, "error", err)
	}

	related, err := h.Store.GetProducts(store.ProductFilter{CategoryID: product.CategoryID, Limit: 4})
	if err != nil {
		slog.Warn("Failed to fetch related products", "error", err)
	}
	filtered := related[:0]
	for _, p := range related {
		if p.ID != product.ID {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) > 3 {
		filtered = filtered[:3]
	}

	data := baseData(session)
	data["Product"] = product
	data["Related"] = filtered
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "product.html", data)
}

// About is a static page.
func (h *ShopHandler) About(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)
	data := baseData(session)
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "about.html", data)
}
