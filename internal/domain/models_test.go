package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchRecordFetched(t *testing.T) {
	price := "65000"
	tests := []struct {
		name string
		rec  SearchRecord
		want bool
	}{
		{"price present", SearchRecord{QueriedPrice: &price, FetchStatus: FetchStatusSuccess}, true},
		{"price missing", SearchRecord{FetchStatus: FetchStatusFailedPrefix + "timeout"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Fetched())
		})
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"a@b.com", true},
		{"@", true},
		{"", false},
		{"not-an-email", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.addr))
		})
	}
}
