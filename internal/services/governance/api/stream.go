package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/signoria/signoria/internal/services/governance/notify"
)

// streamBatchSize caps how many records one poll reads for the live feed.
const streamBatchSize = 100

// handleEventsStream upgrades to a websocket and streams journal records
// as JSON, oldest first, starting after the requested after_seq.
func (s *Server) handleEventsStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if _, err := queryUint(r, "after_seq"); err != nil {
		writeError(w, r, err)
		return
	}
	websocket.Handler(s.streamEvents).ServeHTTP(w, r)
}

func (s *Server) streamEvents(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	request := conn.Request()
	if request == nil {
		return
	}
	ctx := request.Context()
	cursor, err := queryUint(request, "after_seq")
	if err != nil {
		return
	}

	encoder := json.NewEncoder(conn)
	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		records, err := s.service.Records(ctx, cursor, streamBatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("governance api: stream journal read failed: %v", err)
		}
		for _, record := range records {
			if err := encoder.Encode(notify.EventFromRecord(record)); err != nil {
				return
			}
			cursor = record.Seq
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
