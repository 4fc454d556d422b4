// Package api provides HTTP handlers for the admin endpoints.
package api

import (
	"log/slog"
	"net/http"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("ok", nil))
}

// ordersHandler lists committed orders, or one order when ?id= is given.
func (s *Server) ordersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		order, err := s.st.GetOrder(id)
		if err != nil {
			slog.Error("Server.ordersHandler: failed to get order", "error", err, "id", id)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to retrieve order"))
			return
		}
		if order == nil {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Order not found"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(order))
		return
	}

	orders, err := s.st.GetOrders()
	if err != nil {
		slog.Error("Server.ordersHandler: failed to list orders", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to retrieve orders"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(orders))
}

func (s *Server) responsesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	responses, err := s.st.GetResponses()
	if err != nil {
		slog.Error("Server.responsesHandler: failed to list responses", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to retrieve responses"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(responses))
}

func (s *Server) receiptsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	receipts, err := s.st.GetReceipts()
	if err != nil {
		slog.Error("Server.receiptsHandler: failed to list receipts", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to retrieve receipts"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(receipts))
}
