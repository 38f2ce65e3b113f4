// Package testutil provides an on-disk SQLite database and in-memory fakes
// for the SMS gateway and object storage.
package testutil

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"peymonak_backend/internal/config"
	"peymonak_backend/internal/model"
	"peymonak_backend/internal/reference"
	"peymonak_backend/internal/repository"
	"peymonak_backend/internal/service"
	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated SQLite database in the test's temp dir.
// A single connection serializes writers the way row locks would.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db, nil))
	return db
}

// Catalog is a small reference set that includes Tehran.
func Catalog() *reference.Catalog {
	return reference.New(
		[]string{"Tehran", "Isfahan", "Fars", "Khuzestan", "Qom"},
		[]string{"mason", "electrician", "plumber", "welder"},
		[]string{"male", "female"},
	)
}

type SentSMS struct {
	Phone string
	Text  string
}

// FakeSMS records messages and can be told to fail.
type FakeSMS struct {
	mu   sync.Mutex
	Sent []SentSMS
	Err  error
}

func (f *FakeSMS) Send(ctx context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, SentSMS{Phone: phone, Text: text})
	return nil
}

func (f *FakeSMS) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

var codePattern = regexp.MustCompile(`\d{6}`)

// LastCode extracts the 6-digit code from the most recent message to phone.
func (f *FakeSMS) LastCode(t *testing.T, phone string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Sent) - 1; i >= 0; i-- {
		if f.Sent[i].Phone == phone {
			code := codePattern.FindString(f.Sent[i].Text)
			require.NotEmpty(t, code, "no code in %q", f.Sent[i].Text)
			return code
		}
	}
	t.Fatalf("no sms sent to %s", phone)
	return ""
}

// MemoryStorage implements service.StorageProvider in memory.
type MemoryStorage struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	FailAfter int // fail uploads once this many objects were stored; 0 disables
	uploads   int
}

var _ service.StorageProvider = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: map[string][]byte{}}
}

func (m *MemoryStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAfter > 0 && m.uploads >= m.FailAfter {
		return "", fmt.Errorf("storage unavailable")
	}
	m.uploads++
	m.Objects[key] = data
	return m.GetURL(key), nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

func (m *MemoryStorage) GetURL(key string) string {
	return "/images/" + key
}

func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}

func (m *MemoryStorage) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	return keys
}

// PNG returns a small encoded PNG with a transparent corner.
func PNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// PNGHeader is a grayscale PNG that declares width x height but carries no
// pixel data. It is enough for image.DecodeConfig.
func PNGHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth; color type, compression, filter and interlace stay 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// Images returns n copies of a valid upload.
func Images(t *testing.T, n int) []service.ImageFile {
	t.Helper()
	files := make([]service.ImageFile, n)
	for i := range files {
		files[i] = service.ImageFile{Name: fmt.Sprintf("img%d.png", i), Data: PNG(t)}
	}
	return files
}

// Env wires every service against one test database.
type Env struct {
	DB           *gorm.DB
	SMS          *FakeSMS
	Storage      *MemoryStorage
	Catalog      *reference.Catalog
	Tokens       *service.TokenService
	Verification *service.VerificationService
	Auth         *service.AuthService
	Profiles     *service.ProfileService
	Ads          *service.AdService
	Cooperation  *service.CooperationService
	Saved        *service.SavedAdService
	Provinces    *service.ProvinceService
	Support      *service.SupportService
	Images       *service.ImageService
}

const JWTSecret = "test-secret-test-secret-test-secret!"

func NewEnv(t *testing.T) *Env {
	t.Helper()
	service.CodeHashCost = bcrypt.MinCost

	db := NewTestDB(t)
	sms := &FakeSMS{}
	storage := NewMemoryStorage()
	catalog := Catalog()

	accounts := repository.NewAccountRepository(db)
	profiles := repository.NewProfileRepository(db)
	ads := repository.NewAdRepository(db)

	store := service.NewRedisStore(nil)
	jwtCfg := &config.JWTConfig{Secret: JWTSecret, AccessExpire: time.Hour, RefreshExpire: 24 * time.Hour}
	tokens := service.NewTokenService(accounts, store, jwtCfg)
	images := service.NewImageService(&service.StorageService{Provider: storage})

	return &Env{
		DB:           db,
		SMS:          sms,
		Storage:      storage,
		Catalog:      catalog,
		Tokens:       tokens,
		Verification: service.NewVerificationService(accounts, sms, store, tokens, &config.VerificationConfig{}),
		Auth:         service.NewAuthService(db, accounts, tokens),
		Profiles:     service.NewProfileService(db, profiles, images, catalog),
		Ads:          service.NewAdService(db, ads, accounts, profiles, images, catalog),
		Cooperation:  service.NewCooperationService(db, repository.NewCooperationRepository(db), ads, accounts),
		Saved:        service.NewSavedAdService(repository.NewSavedAdRepository(db), ads),
		Provinces:    service.NewProvinceService(repository.NewProvinceRepository(db), catalog),
		Support:      service.NewSupportService(repository.NewSupportRepository(db)),
		Images:       images,
	}
}

// Register creates a verified account with the given role through the
// public registration flow.
func (e *Env) Register(t *testing.T, phone string, role model.Role) *model.Account {
	t.Helper()
	res, err := e.Auth.Register(context.Background(), service.RegisterInput{
		PhoneNumber:  phone,
		Role:         role,
		NationalCode: NationalCodeFor(phone),
	})
	require.NoError(t, err)
	return res.Account
}

// NationalCodeFor derives a unique 10-digit national code from a phone number.
func NationalCodeFor(phone string) string {
	return phone[len(phone)-10:]
}

// CreateProfile gives the account a minimal profile located in Tehran.
func (e *Env) CreateProfile(t *testing.T, accountID uint) *model.Profile {
	t.Helper()
	name, city, gender := "Test User", "Tehran", "male"
	p, err := e.Profiles.Create(context.Background(), accountID, service.ProfileInput{
		Name:   &name,
		City:   &city,
		Gender: &gender,
	}, nil, nil)
	require.NoError(t, err)
	return p
}

// ValidAd is an ad input that passes validation for any role.
func ValidAd() service.AdInput {
	return service.AdInput{
		Title:           "Need a mason",
		Description:     "Two weeks of work in north Tehran",
		Fee:             "negotiable",
		Province:        "Tehran",
		City:            "Tehran",
		CooperationKind: "company",
		Skill:           "mason",
	}
}

func init() {
	util.RegisterValidators()
}
