package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"storepos/m/domain"
)

const settingsColumns = `id, store_name, address, phone, created_at, updated_at`

// firstSettings returns the effective settings row, the lowest id one.
func (h *Handler) firstSettings() (domain.StoreSettings, error) {
	var s domain.StoreSettings
	err := h.db.Get(&s, `SELECT `+settingsColumns+` FROM store_settings ORDER BY id ASC LIMIT 1`)
	return s, err
}

func (h *Handler) getStoreSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.firstSettings()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No settings yet is a normal outcome, not an error.
			respondJSON(w, http.StatusOK, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load store settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

type updateStoreSettingsRequest struct {
	StoreName domain.Optional[string] `json:"store_name"`
	Address   domain.Optional[string] `json:"address"`
	Phone     domain.Optional[string] `json:"phone"`
}

func (h *Handler) updateStoreSettings(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "manager") {
		return
	}
	var req updateStoreSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StoreName.Set && (!req.StoreName.Valid || strings.TrimSpace(req.StoreName.Value) == "") {
		respondError(w, http.StatusBadRequest, "store_name must not be empty")
		return
	}

	existing, err := h.firstSettings()
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusInternalServerError, "unable to load store settings")
			return
		}

		// First write creates the singleton row.
		name := "General Store"
		if req.StoreName.Set && req.StoreName.Valid {
			name = req.StoreName.Value
		}
		var address, phone *string
		if req.Address.Set && req.Address.Valid {
			address = &req.Address.Value
		}
		if req.Phone.Set && req.Phone.Valid {
			phone = &req.Phone.Value
		}
		if _, err := h.db.Exec(`INSERT INTO store_settings (store_name, address, phone) VALUES (?, ?, ?)`,
			name, address, phone); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to create store settings")
			return
		}
	} else {
		var (
			clauses []string
			args    []any
		)
		if req.StoreName.Set {
			clauses = append(clauses, "store_name = ?")
			args = append(args, req.StoreName.Value)
		}
		if req.Address.Set {
			clauses = append(clauses, "address = ?")
			if req.Address.Valid {
				args = append(args, req.Address.Value)
			} else {
				args = append(args, nil)
			}
		}
		if req.Phone.Set {
			clauses = append(clauses, "phone = ?")
			if req.Phone.Valid {
				args = append(args, req.Phone.Value)
			} else {
				args = append(args, nil)
			}
		}
		clauses = append(clauses, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, existing.ID)
		query := `UPDATE store_settings SET ` + strings.Join(clauses, ", ") + ` WHERE id = ?`
		if _, err := h.db.Exec(query, args...); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update store settings")
			return
		}
	}

	settings, err := h.firstSettings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load store settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
