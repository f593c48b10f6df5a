package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"court-booking-tui/model"
)

const (
	dirName         = "court-booking-tui"
	courtCacheTTL   = 24 * time.Hour
	maxRecentPlayer = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

type playerHistory struct {
	Players []string `json:"players"`
}

type courtVisibility struct {
	HiddenByServer map[string][]int `json:"hidden_by_server"`
}

// LoadCourtCache returns the courts last seen on apiURL and whether they are still fresh.
func LoadCourtCache(apiURL string) ([]model.Court, bool, error) {
	path, err := cachePath(fmt.Sprintf("courts_%s.json", serverKey(apiURL)))
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Court](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= courtCacheTTL, nil
}

// SaveCourtCache stores courts for apiURL with the current time.
func SaveCourtCache(apiURL string, courts []model.Court) error {
	path, err := cachePath(fmt.Sprintf("courts_%s.json", serverKey(apiURL)))
	if err != nil {
		return err
	}
	return saveCache(path, courts)
}

// LoadRecentPlayers returns previously submitted player names, newest first.
func LoadRecentPlayers() ([]string, error) {
	path, err := configPath("players.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history playerHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid player history format")
	}
	return history.Players, nil
}

// RememberPlayer moves name to the front of the history, dropping case-insensitive duplicates.
func RememberPlayer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("player name is required")
	}
	history, _ := LoadRecentPlayers()
	next := []string{name}
	for _, existing := range history {
		if strings.EqualFold(existing, name) || strings.TrimSpace(existing) == "" {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentPlayer {
			break
		}
	}

	path, err := configPath("players.json")
	if err != nil {
		return err
	}
	return writeJSON(path, playerHistory{Players: next})
}

// LoadHiddenCourts returns the ids of courts the user hid from the grid of apiURL.
func LoadHiddenCourts(apiURL string) (map[int]bool, error) {
	result := map[int]bool{}
	visibility, err := loadCourtVisibility()
	if err != nil {
		return nil, err
	}
	for _, courtID := range visibility.HiddenByServer[serverKey(apiURL)] {
		if courtID > 0 {
			result[courtID] = true
		}
	}
	return result, nil
}

// SetCourtHidden hides or shows courtID on the grid for apiURL.
func SetCourtHidden(apiURL string, courtID int, hidden bool) error {
	if strings.TrimSpace(apiURL) == "" || courtID <= 0 {
		return errors.New("api url and court id are required")
	}

	visibility, err := loadCourtVisibility()
	if err != nil {
		return err
	}
	if visibility.HiddenByServer == nil {
		visibility.HiddenByServer = map[string][]int{}
	}

	key := serverKey(apiURL)
	current := visibility.HiddenByServer[key]
	index := -1
	for i, id := range current {
		if id == courtID {
			index = i
			break
		}
	}

	if hidden {
		if index < 0 {
			current = append(current, courtID)
		}
	} else if index >= 0 {
		current = append(current[:index], current[index+1:]...)
	}

	if len(current) == 0 {
		delete(visibility.HiddenByServer, key)
	} else {
		sort.Ints(current)
		visibility.HiddenByServer[key] = current
	}

	path, err := configPath("court_visibility.json")
	if err != nil {
		return err
	}
	return writeJSON(path, visibility)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	return writeJSON(path, cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	})
}

func loadCourtVisibility() (courtVisibility, error) {
	path, err := configPath("court_visibility.json")
	if err != nil {
		return courtVisibility{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return courtVisibility{HiddenByServer: map[string][]int{}}, nil
		}
		return courtVisibility{}, err
	}

	var visibility courtVisibility
	if err := json.Unmarshal(data, &visibility); err != nil {
		return courtVisibility{}, errors.New("invalid court visibility format")
	}
	if visibility.HiddenByServer == nil {
		visibility.HiddenByServer = map[string][]int{}
	}
	return visibility, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, name), nil
}

// serverKey turns an API URL into a stable file and map key.
func serverKey(apiURL string) string {
	key := strings.ToLower(strings.TrimRight(strings.TrimSpace(apiURL), "/"))
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}
