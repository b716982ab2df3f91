package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAssignsIDAndTime(t *testing.T) {
	s := New(0)
	scan := s.Save(&models.ScanSession{Kind: "resolve", Input: "Dune"})

	require.NotEmpty(t, scan.ID)
	assert.False(t, scan.CreatedAt.IsZero())

	got, ok := s.Get(scan.ID)
	require.True(t, ok)
	assert.Equal(t, "Dune", got.Input)
}

func TestListNewestFirst(t *testing.T) {
	s := New(0)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.Save(&models.ScanSession{ID: fmt.Sprint(i), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	var ids []string
	for _, scan := range s.List() {
		ids = append(ids, scan.ID)
	}
	assert.Equal(t, []string{"2", "1", "0"}, ids)
}

func TestEvictsOldest(t *testing.T) {
	s := New(2)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.Save(&models.ScanSession{ID: fmt.Sprint(i), CreatedAt: base.Add(time.Duration(i) * time.Second)})
	}

	_, ok := s.Get("0")
	assert.False(t, ok)
	assert.Len(t, s.List(), 2)
}

func TestDelete(t *testing.T) {
	s := New(0)
	scan := s.Save(&models.ScanSession{})
	s.Delete(scan.ID)
	_, ok := s.Get(scan.ID)
	assert.False(t, ok)
}

func TestBeginSupersedesSameClient(t *testing.T) {
	s := New(0)

	first, doneFirst := s.Begin(context.Background(), "phone-1")
	defer doneFirst()
	other, doneOther := s.Begin(context.Background(), "phone-2")
	defer doneOther()
	second, doneSecond := s.Begin(context.Background(), "phone-1")
	defer doneSecond()

	<-first.Done()
	assert.True(t, errors.Is(context.Cause(first), ErrSuperseded))
	assert.NoError(t, other.Err())
	assert.NoError(t, second.Err())
}

func TestBeginDoneReleasesClient(t *testing.T) {
	s := New(0)

	first, done := s.Begin(context.Background(), "phone-1")
	done()
	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NotErrorIs(t, context.Cause(first), ErrSuperseded)

	second, doneSecond := s.Begin(context.Background(), "phone-1")
	defer doneSecond()
	assert.NoError(t, second.Err())
}

func TestBeginAnonymousNeverSupersedes(t *testing.T) {
	s := New(0)

	a, doneA := s.Begin(context.Background(), "")
	defer doneA()
	b, doneB := s.Begin(context.Background(), "")
	defer doneB()

	assert.NoError(t, a.Err())
	assert.NoError(t, b.Err())
}

func TestConcurrentSave(t *testing.T) {
	s := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Save(&models.ScanSession{Kind: "search"})
			_ = s.List()
		}()
	}
	wg.Wait()
	assert.Len(t, s.List(), 50)
}
