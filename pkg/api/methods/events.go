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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ZaparooProject/zaparoo-covers/v2/pkg/api/models"
	"github.com/rs/zerolog/log"
)

const eventsBufferSize = 32

var errEventsUnavailable = errors.New("events are not available")

// HandleEvents streams covers notifications as server-sent events. An
// optional comma separated "method" query parameter limits the stream to
// the named notification methods.
func HandleEvents(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Broker == nil {
			writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
				Error: errEventsUnavailable.Error(),
				Code:  http.StatusServiceUnavailable,
			})
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, errors.New("streaming not supported"))
			return
		}

		var filter []string
		if q := r.URL.Query().Get("method"); q != "" {
			for m := range strings.SplitSeq(q, ",") {
				if m = strings.TrimSpace(m); m != "" {
					filter = append(filter, m)
				}
			}
		}

		notifs, id := env.Broker.Subscribe(eventsBufferSize, filter...)
		defer env.Broker.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		log.Debug().Int("subscriber", id).Strs("filter", filter).Msg("events client connected")

		for {
			select {
			case <-r.Context().Done():
				log.Debug().Int("subscriber", id).Msg("events client disconnected")
				return
			case notif, ok := <-notifs:
				if !ok {
					return
				}
				data := string(notif.Params)
				if data == "" {
					data = "null"
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", notif.Method, data); err != nil {
					log.Debug().Err(err).Msg("error writing event")
					return
				}
				flusher.Flush()
			}
		}
	}
}
