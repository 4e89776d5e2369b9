package controllers

import (
	"net/http"

	"github.com/inventra/pos-backend/api/middleware"
	"github.com/inventra/pos-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if name := middleware.UserNameFromContext(r.Context()); name != "" {
			payload["operator"] = name
		}
		responses.WriteSuccess(w, payload)
	}
}
