// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/olegiv/ostaff-go/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory Store that counts every call.
type fakeStore struct {
	mu    sync.Mutex
	calls int
	seq   int
	err   error

	messages map[string]model.Message
	apps     map[string]model.Application
	jobs     map[string]model.Job

	attachErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages: map[string]model.Message{},
		apps:     map[string]model.Application{},
		jobs:     map[string]model.Job{},
	}
}

func (f *fakeStore) begin() error {
	f.calls++
	return f.err
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) InsertMessage(_ context.Context, m model.Message) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return model.Message{}, err
	}
	m.ID = f.nextID("msg")
	m.CreatedAt = time.Now()
	f.messages[m.ID] = m
	return m, nil
}

func (f *fakeStore) ListMessages(_ context.Context, ft model.FromType) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	var out []model.Message
	for _, m := range f.messages {
		if m.FromType == ft {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) SetMessageStatus(_ context.Context, id string, s model.MessageStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	m, ok := f.messages[id]
	if !ok {
		return model.ErrNotFound
	}
	m.Status = s
	f.messages[id] = m
	return nil
}

func (f *fakeStore) InsertApplication(_ context.Context, a model.Application) (model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return model.Application{}, err
	}
	a.ID = f.nextID("app")
	f.apps[a.ID] = a
	return a, nil
}

func (f *fakeStore) AttachApplicationFiles(_ context.Context, id string, files model.ApplicationFiles) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	if f.attachErr != nil {
		return f.attachErr
	}
	a, ok := f.apps[id]
	if !ok {
		return model.ErrNotFound
	}
	a.CVPath, a.CVName, a.OtherPath, a.OtherName = files.CVPath, files.CVName, files.OtherPath, files.OtherName
	f.apps[id] = a
	return nil
}

func (f *fakeStore) ListApplications(context.Context) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	out := make([]model.Application, 0, len(f.apps))
	for _, a := range f.apps {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) GetApplication(_ context.Context, id string) (model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return model.Application{}, err
	}
	a, ok := f.apps[id]
	if !ok {
		return model.Application{}, model.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) SetApplicationStatus(_ context.Context, id string, s model.ApplicationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	a, ok := f.apps[id]
	if !ok {
		return model.ErrNotFound
	}
	a.Status = s
	f.apps[id] = a
	return nil
}

func (f *fakeStore) UpsertJob(_ context.Context, j model.Job) (model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return model.Job{}, err
	}
	for id, existing := range f.jobs {
		if existing.Slug == j.Slug {
			j.ID = id
			f.jobs[id] = j
			return j, nil
		}
	}
	j.ID = f.nextID("job")
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeStore) ListJobs(context.Context) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	out := make([]model.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeStore) ListOpenJobs(ctx context.Context, now time.Time) ([]model.Job, error) {
	all, err := f.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	return model.FilterOpen(all, now), nil
}

func (f *fakeStore) GetJob(_ context.Context, id string) (model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return model.Job{}, err
	}
	j, ok := f.jobs[id]
	if !ok {
		return model.Job{}, model.ErrNotFound
	}
	return j, nil
}

func (f *fakeStore) GetJobBySlug(_ context.Context, slug string) (model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return model.Job{}, err
	}
	for _, j := range f.jobs {
		if j.Slug == slug {
			return j, nil
		}
	}
	return model.Job{}, model.ErrNotFound
}

func (f *fakeStore) SetJobPublished(_ context.Context, id string, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	j, ok := f.jobs[id]
	if !ok {
		return model.ErrNotFound
	}
	j.Published = published
	f.jobs[id] = j
	return nil
}

func (f *fakeStore) DeleteJob(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	if _, ok := f.jobs[id]; !ok {
		return model.ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

// fakeObjects is an in-memory ObjectStore with fail-on-conflict puts.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	signs   int
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	if _, ok := f.objects[key]; ok {
		return fmt.Errorf("object %s exists", key)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	f.objects[key] = buf.Bytes()
	return nil
}

func (f *fakeObjects) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signs++
	if _, ok := f.objects[key]; !ok {
		return "", model.ErrNotFound
	}
	return fmt.Sprintf("https://objects.example/%s?ttl=%d&n=%d", key, int(ttl.Seconds()), f.signs), nil
}

type countingNotifier struct {
	mu       sync.Mutex
	messages int
	apps     int
}

func (n *countingNotifier) MessageReceived(context.Context, model.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages++
	return nil
}

func (n *countingNotifier) ApplicationReceived(context.Context, model.Application) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.apps++
	return nil
}
