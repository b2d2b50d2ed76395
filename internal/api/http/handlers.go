package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mealplanner/internal/domain"
	"mealplanner/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Accounts    service.AccountServiceInterface
	Restaurants service.RestaurantServiceInterface
	Orders      service.OrderServiceInterface
	Reviews     service.ReviewServiceInterface
	Analytics   service.AnalyticsServiceInterface
	Generation  service.GenerationServiceInterface
	Receipts    service.ReceiptRenderer
	Sessions    service.SessionStore
}

func NewHandler(
	accounts service.AccountServiceInterface,
	restaurants service.RestaurantServiceInterface,
	orders service.OrderServiceInterface,
	reviews service.ReviewServiceInterface,
	analytics service.AnalyticsServiceInterface,
	generation service.GenerationServiceInterface,
	receipts service.ReceiptRenderer,
	sessions service.SessionStore,
) *Handler {
	return &Handler{
		Accounts:    accounts,
		Restaurants: restaurants,
		Orders:      orders,
		Reviews:     reviews,
		Analytics:   analytics,
		Generation:  generation,
		Receipts:    receipts,
		Sessions:    sessions,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/register", h.register).Methods("POST")
	r.HandleFunc("/api/login", h.login).Methods("POST")
	r.HandleFunc("/api/logout", h.logout).Methods("POST")
	r.HandleFunc("/api/profile", h.requireSession(RealmCustomer, h.getProfile)).Methods("GET")
	r.HandleFunc("/api/profile", h.requireSession(RealmCustomer, h.updateProfile)).Methods("PUT")
	r.HandleFunc("/api/profile/password", h.requireSession(RealmCustomer, h.changePassword)).Methods("POST")
	r.HandleFunc("/api/profile/wallet", h.requireSession(RealmCustomer, h.topUpWallet)).Methods("POST")

	r.HandleFunc("/api/restaurants", h.listRestaurants).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}", h.getRestaurant).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/menu", h.getRestaurantMenu).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/reviews", h.listReviews).Methods("GET")

	r.HandleFunc("/api/orders", h.requireSession(RealmCustomer, h.placeOrder)).Methods("POST")
	r.HandleFunc("/api/orders", h.requireSession(RealmCustomer, h.listOrders)).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.requireSession(RealmCustomer, h.getOrder)).Methods("GET")
	r.HandleFunc("/api/orders/{id}/receipt.pdf", h.requireSession(RealmCustomer, h.getReceipt)).Methods("GET")
	r.HandleFunc("/api/orders/{id}/review", h.requireSession(RealmCustomer, h.submitReview)).Methods("POST")

	r.HandleFunc("/api/menu", h.requireSession(RealmCustomer, h.getGeneratedMenu)).Methods("GET")
	r.HandleFunc("/api/menu/generate", h.requireSession(RealmCustomer, h.enqueueGeneration)).Methods("POST")
	r.HandleFunc("/api/menu/generate/{jobId}", h.requireSession(RealmCustomer, h.getGenerationJob)).Methods("GET")

	r.HandleFunc("/api/restaurant/login", h.restaurantLogin).Methods("POST")
	r.HandleFunc("/api/restaurant/logout", h.restaurantLogout).Methods("POST")
	r.HandleFunc("/api/restaurant/dashboard", h.requireSession(RealmRestaurant, h.restaurantDashboard)).Methods("GET")
	r.HandleFunc("/api/restaurant/orders", h.requireSession(RealmRestaurant, h.restaurantOrders)).Methods("GET")
	r.HandleFunc("/api/restaurant/orders/{id}/{action}", h.requireSession(RealmRestaurant, h.transitionOrder)).Methods("POST")
	r.HandleFunc("/api/restaurant/analytics", h.requireSession(RealmRestaurant, h.restaurantAnalytics)).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "mealplanner",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ------------------------------------------------------------- accounts

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.Accounts.Register(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.startSession(w, r, RealmCustomer, user.ID); err != nil {
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.Accounts.Authenticate(creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		writeError(w, err)
		return
	}
	if err := h.startSession(w, r, RealmCustomer, user.ID); err != nil {
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r, RealmCustomer)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, userID int) {
	user, err := h.Accounts.Profile(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, userID int) {
	var req struct {
		Phone       string `json:"phone"`
		Preferences string `json:"preferences"`
		Allergens   string `json:"allergens"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.Accounts.UpdateProfile(userID, req.Phone, req.Preferences, req.Allergens)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request, userID int) {
	var req struct {
		Current string `json:"current_password"`
		Next    string `json:"new_password"`
		Confirm string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.Accounts.ChangePassword(userID, req.Current, req.Next, req.Confirm); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) topUpWallet(w http.ResponseWriter, r *http.Request, userID int) {
	var req struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.Accounts.TopUpWallet(userID, req.AmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ------------------------------------------------------------- browsing

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	restaurant, err := h.Restaurants.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *Handler) getRestaurantMenu(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	items, err := h.Restaurants.Menu(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// --------------------------------------------------------------- orders

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, userID int) {
	var req service.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.Orders.Place(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, userID int) {
	orders, err := h.Orders.ListForUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, userID int) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	order, err := h.Orders.Get(userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request, userID int) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	order, err := h.Orders.Get(userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	pdf, err := h.Receipts.Render(order)
	if err != nil {
		http.Error(w, "Failed to render receipt", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%d.pdf", order.ID))
	w.Write(pdf)
}

// -------------------------------------------------------------- reviews

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request, userID int) {
	orderID, _ := strconv.Atoi(mux.Vars(r)["id"])
	var req struct {
		Title       string `json:"title"`
		Rating      int    `json:"rating"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	review, err := h.Reviews.Submit(userID, orderID, req.Title, req.Rating, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	restaurantID, _ := strconv.Atoi(mux.Vars(r)["id"])
	q := service.ReviewQuery{Sort: r.URL.Query().Get("sort")}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.FilterRating, _ = strconv.Atoi(r.URL.Query().Get("rating"))

	page, err := h.Reviews.ListForRestaurant(restaurantID, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ------------------------------------------------------ menu generation

func (h *Handler) getGeneratedMenu(w http.ResponseWriter, r *http.Request, userID int) {
	user, err := h.Accounts.Profile(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"selection": user.GeneratedMenu,
		"entries":   domain.ParseSelection(user.GeneratedMenu),
	})
}

func (h *Handler) enqueueGeneration(w http.ResponseWriter, r *http.Request, userID int) {
	var req struct {
		StartDate string `json:"start_date"`
		Days      int    `json:"days"`
		Slots     []int  `json:"slots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Slots) == 0 {
		req.Slots = []int{1, 2, 3}
	}
	job, err := h.Generation.Enqueue(r.Context(), userID, req.StartDate, req.Days, req.Slots)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (h *Handler) getGenerationJob(w http.ResponseWriter, r *http.Request, userID int) {
	job, err := h.Generation.Job(r.Context(), userID, mux.Vars(r)["jobId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ------------------------------------------------------ restaurant side

func (h *Handler) restaurantLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	restaurant, err := h.Restaurants.Authenticate(creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		writeError(w, err)
		return
	}
	if err := h.startSession(w, r, RealmRestaurant, restaurant.ID); err != nil {
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *Handler) restaurantLogout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r, RealmRestaurant)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restaurantDashboard(w http.ResponseWriter, r *http.Request, restaurantID int) {
	counts, err := h.Restaurants.StatusCounts(restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status_counts": counts})
}

func (h *Handler) restaurantOrders(w http.ResponseWriter, r *http.Request, restaurantID int) {
	grouped, err := h.Orders.ListForRestaurant(restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

// Maps the action path segment to the status it moves an order into.
var actionTargets = map[string]domain.OrderStatus{
	"accept":  domain.StatusAccepted,
	"reject":  domain.StatusCancelled,
	"cancel":  domain.StatusCancelled,
	"prepare": domain.StatusPreparing,
	"ready":   domain.StatusReady,
	"deliver": domain.StatusDelivered,
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request, restaurantID int) {
	vars := mux.Vars(r)
	orderID, _ := strconv.Atoi(vars["id"])
	target, ok := actionTargets[vars["action"]]
	if !ok {
		http.Error(w, "Unknown order action", http.StatusBadRequest)
		return
	}
	status, err := h.Orders.Transition(r.Context(), restaurantID, orderID, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": orderID, "status": status})
}

func (h *Handler) restaurantAnalytics(w http.ResponseWriter, r *http.Request, restaurantID int) {
	dashboard, err := h.Analytics.Dashboard(restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// -------------------------------------------------------------- helpers

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		var exhausted *service.GenerationExhaustedError
		if errors.As(err, &exhausted) {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
