// Zaparoo Covers
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Covers.
//
// Zaparoo Covers is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Covers is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Covers.  If not, see <http://www.gnu.org/licenses/>.

package methods

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/config"
	coverspkg "github.com/ZaparooProject/zaparoo-covers/v2/pkg/covers"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/service/covers"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	HeaderAPIKey       = "X-Api-Key"
	HeaderClientID     = "X-Client-Id"
	HeaderClientSecret = "X-Client-Secret"
)

// Env is shared by all API handlers.
type Env struct {
	// Config is optional. When set, credentials missing from the request
	// headers are looked up in auth.toml.
	Config   *config.Instance
	Registry *covers.Registry
	Service  *covers.Service
	// Broker is optional. Without it the events stream is unavailable.
	Broker *broker.Broker
}

// HandleProviders lists the registered cover providers.
func HandleProviders(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		infos := env.Registry.Infos()
		resp := make([]models.ProviderResponse, 0, len(infos))
		for _, info := range infos {
			resp = append(resp, models.ProviderResponse{
				Name:         info.Name,
				Description:  info.Description,
				Website:      info.Website,
				RequiresAuth: info.RequiresAuth,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleCovers runs a batch for the provider named in the URL. The request
// body is the JSON game list and the response holds the enriched list.
func HandleCovers(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "provider")
		log.Info().Str("provider", name).Msg("received covers request")

		creds := CredentialsFromRequest(r)
		if env.Config != nil {
			creds = creds.WithFallback(env.Config.ProviderCredentials(name))
		}

		provider, err := env.Registry.New(name, creds)
		if err != nil {
			writeError(w, err)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{
					Error: "request body too large",
					Code:  http.StatusRequestEntityTooLarge,
				})
				return
			}
			log.Error().Err(err).Msg("failed to read request body")
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Error: "failed to read request body",
				Code:  http.StatusBadRequest,
			})
			return
		}

		result, err := env.Service.Run(r.Context(), provider, body)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, models.CoversResponse{
			RunID:    result.RunID,
			Provider: result.Provider,
			Items:    result.Items,
			Found:    result.Found,
			Total:    result.Total,
		})
	}
}

// HandleProgress returns the progress of the current or last run.
func HandleProgress(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, env.Service.Progress())
	}
}

// CredentialsFromRequest reads provider credentials from request headers.
func CredentialsFromRequest(r *http.Request) coverspkg.Credentials {
	return coverspkg.Credentials{
		APIKey:       r.Header.Get(HeaderAPIKey),
		ClientID:     r.Header.Get(HeaderClientID),
		ClientSecret: r.Header.Get(HeaderClientSecret),
	}
}

// StatusForError maps a run error to an HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, coverspkg.ErrUnknownProvider):
		return http.StatusNotFound
	case errors.Is(err, coverspkg.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, coverspkg.ErrMissingCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, covers.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := StatusForError(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("covers request failed")
		msg = http.StatusText(code)
	} else {
		log.Warn().Err(err).Int("code", code).Msg("covers request rejected")
	}
	writeJSON(w, code, models.ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
