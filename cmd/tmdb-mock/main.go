package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

type fixture struct {
	Movies []json.RawMessage   `json:"movies"`
	Videos map[string][]string `json:"videos"`
}

type videoEntry struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

func main() {
	var (
		port   = flag.String("port", "9099", "port to listen on")
		data   = flag.String("data", "mock-tmdb.json", "path to mock data file")
		apiKey = flag.String("api-key", "", "require this api_key query parameter when set")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload fixture
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	checkKey := func(w http.ResponseWriter, r *http.Request) bool {
		key := r.URL.Query().Get("api_key")
		if key == "" || (*apiKey != "" && key != *apiKey) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /3/movie/now_playing", func(w http.ResponseWriter, r *http.Request) {
		if !checkKey(w, r) {
			return
		}
		writeJSON(w, map[string]any{"page": 1, "results": payload.Movies})
	})
	mux.HandleFunc("GET /3/movie/{id}/videos", func(w http.ResponseWriter, r *http.Request) {
		if !checkKey(w, r) {
			return
		}
		id := r.PathValue("id")
		keys, ok := payload.Videos[id]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		results := make([]videoEntry, 0, len(keys))
		for _, key := range keys {
			results = append(results, videoEntry{Key: key, Site: "YouTube", Type: "Trailer"})
		}
		writeJSON(w, map[string]any{"id": id, "results": results})
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s (%d movies)", addr, len(payload.Movies))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
