package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rewired-gh/georisk/internal/models"
)

// parsePillarScores parses repeated name=score:confidence overrides.
func parsePillarScores(values []string) (map[models.PillarName]models.PillarScore, error) {
	out := make(map[models.PillarName]models.PillarScore, len(values))
	for _, v := range values {
		name, rest, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --pillar %q (expected name=score:confidence)", v)
		}
		pillar := models.PillarName(strings.ToLower(strings.TrimSpace(name)))
		if !pillar.Valid() {
			return nil, fmt.Errorf("invalid --pillar %q: unknown pillar %q", v, name)
		}
		scoreStr, confStr, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --pillar %q (expected name=score:confidence)", v)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(scoreStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --pillar %q score: %w", v, err)
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(confStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --pillar %q confidence: %w", v, err)
		}
		out[pillar] = models.PillarScore{Score: score, Confidence: conf}
	}
	return out, nil
}

// cleanList drops blank entries and trims the rest.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
