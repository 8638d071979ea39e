package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/cache"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

// In-memory repository fakes. The review store enforces the
// (author_id, title_id) uniqueness constraint under a mutex, the same
// guarantee Postgres gives via the unique index, so the concurrency
// tests exercise the real create path.

type fakeReviewRepo struct {
	mu      sync.Mutex
	nextID  int64
	reviews map[int64]*models.Review
	authors map[string]models.User
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		nextID:  1,
		reviews: make(map[int64]*models.Review),
		authors: make(map[string]models.User),
	}
}

func (f *fakeReviewRepo) addAuthor(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authors[u.ID] = u
}

func (f *fakeReviewRepo) Create(review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reviews {
		if r.AuthorID == review.AuthorID && r.TitleID == review.TitleID {
			return repository.ErrDuplicateReview
		}
	}

	review.ID = f.nextID
	f.nextID++
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	cp := *review
	f.reviews[review.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) Update(review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reviews[review.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	review.UpdatedAt = time.Now()
	cp := *review
	f.reviews[review.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) Delete(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reviews[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) GetByID(id int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	cp.Author = f.authors[r.AuthorID]
	return &cp, nil
}

func (f *fakeReviewRepo) GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reviews {
		if r.AuthorID == authorID && r.TitleID == titleID {
			cp := *r
			cp.Author = f.authors[r.AuthorID]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReviewRepo) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Review
	for _, r := range f.reviews {
		if r.TitleID == titleID {
			cp := *r
			cp.Author = f.authors[r.AuthorID]
			out = append(out, cp)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) AverageScore(titleID int64) (*float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var sum, count int
	for _, r := range f.reviews {
		if r.TitleID == titleID {
			sum += r.Score
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(count)
	return &avg, nil
}

type fakeTitleRepo struct {
	mu     sync.Mutex
	nextID int64
	titles map[int64]*models.Title
}

func newFakeTitleRepo() *fakeTitleRepo {
	return &fakeTitleRepo{nextID: 1, titles: make(map[int64]*models.Title)}
}

func (f *fakeTitleRepo) add(t models.Title) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	f.titles[t.ID] = &t
	return t.ID
}

func (f *fakeTitleRepo) GetAll(ctx context.Context, page, pageSize int) ([]models.Title, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Title
	for _, t := range f.titles {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.titles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTitleRepo) Create(ctx context.Context, title *models.Title) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	title.ID = f.nextID
	f.nextID++
	cp := *title
	f.titles[title.ID] = &cp
	return nil
}

func (f *fakeTitleRepo) Update(ctx context.Context, title *models.Title) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.titles[title.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *title
	f.titles[title.ID] = &cp
	return nil
}

func (f *fakeTitleRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.titles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.titles, id)
	return nil
}

func (f *fakeTitleRepo) ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.titles[title.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Genres = genres
	title.Genres = genres
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64]*models.Comment
	authors  map[string]models.User
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		nextID:   1,
		comments: make(map[int64]*models.Comment),
		authors:  make(map[string]models.User),
	}
}

func (f *fakeCommentRepo) addAuthor(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authors[u.ID] = u
}

func (f *fakeCommentRepo) Create(comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment.ID = f.nextID
	f.nextID++
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	f.comments[comment.ID] = &cp
	return nil
}

func (f *fakeCommentRepo) Update(comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[comment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *comment
	f.comments[comment.ID] = &cp
	return nil
}

func (f *fakeCommentRepo) Delete(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) GetByID(id int64) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cm, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *cm
	cp.Author = f.authors[cm.AuthorID]
	return &cp, nil
}

func (f *fakeCommentRepo) GetByReview(reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, cm := range f.comments {
		if cm.ReviewID == reviewID {
			cp := *cm
			cp.Author = f.authors[cm.AuthorID]
			out = append(out, cp)
		}
	}
	return out, int64(len(out)), nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	categories map[string]*models.Category // keyed by slug
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{nextID: 1, categories: make(map[string]*models.Category)}
}

func (f *fakeCategoryRepo) GetAll(ctx context.Context, page, pageSize int) ([]models.Category, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	category.ID = f.nextID
	f.nextID++
	cp := *category
	f.categories[category.Slug] = &cp
	return nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[category.Slug]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *category
	f.categories[category.Slug] = &cp
	return nil
}

func (f *fakeCategoryRepo) DeleteBySlug(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[slug]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.categories, slug)
	return nil
}

type fakeGenreRepo struct {
	mu     sync.Mutex
	nextID int64
	genres map[string]*models.Genre // keyed by slug
}

func newFakeGenreRepo() *fakeGenreRepo {
	return &fakeGenreRepo{nextID: 1, genres: make(map[string]*models.Genre)}
}

func (f *fakeGenreRepo) GetAll(ctx context.Context, page, pageSize int) ([]models.Genre, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Genre
	for _, g := range f.genres {
		out = append(out, *g)
	}
	return out, int64(len(out)), nil
}

func (f *fakeGenreRepo) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.genres[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGenreRepo) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		g, ok := f.genres[slug]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeGenreRepo) Create(ctx context.Context, genre *models.Genre) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	genre.ID = f.nextID
	f.nextID++
	cp := *genre
	f.genres[genre.Slug] = &cp
	return nil
}

func (f *fakeGenreRepo) Update(ctx context.Context, genre *models.Genre) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.genres[genre.Slug]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *genre
	f.genres[genre.Slug] = &cp
	return nil
}

func (f *fakeGenreRepo) DeleteBySlug(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.genres[slug]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.genres, slug)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) add(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = &u
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) DeleteByUsername(username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Username == username {
			delete(f.users, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetAll(page, pageSize int) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

// fakeCodeStore is an in-memory cache.CodeStore.
type fakeCodeStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: make(map[string]string)}
}

func (f *fakeCodeStore) Set(ctx context.Context, username, codeHash string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[username] = codeHash
	return nil
}

func (f *fakeCodeStore) Get(ctx context.Context, username string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.codes[username]
	if !ok {
		return "", cache.ErrCodeNotFound
	}
	return hash, nil
}

func (f *fakeCodeStore) Delete(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, username)
	return nil
}

func (f *fakeCodeStore) Close() error { return nil }

// captureMailer records the last code handed to it.
type captureMailer struct {
	mu       sync.Mutex
	lastCode string
	lastTo   string
}

func (m *captureMailer) SendConfirmationCode(ctx context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = email
	m.lastCode = code
	return nil
}

func (m *captureMailer) code() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCode
}
