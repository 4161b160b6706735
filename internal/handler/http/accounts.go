package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-otp-keeper/internal/utils"
	"github.com/MKhiriev/go-otp-keeper/models"
)

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.services.AccountService.ListAccounts(r.Context(), viewer(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, accounts, http.StatusOK)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.services.AccountService.GetAccount(r.Context(), viewer(r), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusOK)
}

func (h *Handler) getCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.services.AccountService.GetCode(r.Context(), viewer(r), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, code, http.StatusOK)
}

func (h *Handler) revealSecret(w http.ResponseWriter, r *http.Request) {
	secret, err := h.services.AccountService.RevealSecret(r.Context(), viewer(r), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, secret, http.StatusOK)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.services.AccountService.CreateAccount(r.Context(), viewer(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusCreated)
}

func (h *Handler) importAccount(w http.ResponseWriter, r *http.Request) {
	var req models.ImportAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.services.AccountService.ImportAccount(r.Context(), viewer(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusCreated)
}

func (h *Handler) generateSecret(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSecretRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	key, err := h.services.AccountService.GenerateSecret(r.Context(), viewer(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, key, http.StatusOK)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.services.AccountService.UpdateAccount(r.Context(), viewer(r), chi.URLParam(r, "accountID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusOK)
}

func (h *Handler) updateRemark(w http.ResponseWriter, r *http.Request) {
	var req models.RemarkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.services.AccountService.UpdateRemark(r.Context(), viewer(r), chi.URLParam(r, "accountID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusOK)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.services.AccountService.DeleteAccount(r.Context(), viewer(r), chi.URLParam(r, "accountID")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) shareAccount(w http.ResponseWriter, r *http.Request) {
	var req models.ShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.services.AccountService.ShareAccount(r.Context(), viewer(r), chi.URLParam(r, "accountID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusOK)
}

func (h *Handler) unshareAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.services.AccountService.UnshareAccount(r.Context(), viewer(r), chi.URLParam(r, "accountID"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, account, http.StatusOK)
}
