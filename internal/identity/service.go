package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vortexmedx/medconnect-backend/internal/config"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the database-backed Provider: bcrypt credentials, HS256 access
// tokens, hashed rotating refresh tokens, and synchronous event dispatch.
type Service struct {
	db  *gorm.DB
	cfg *config.Config

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:   db,
		cfg:  cfg,
		subs: make(map[int]func(Event)),
	}
}

func (s *Service) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Session, error) {
	if len(email) == 0 || len(password) < 8 {
		return nil, fmt.Errorf("email required and password must be at least 8 characters")
	}

	var existing models.Identity
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ident := models.Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Metadata:     marshalMetadata(metadata),
	}

	if err := s.db.WithContext(ctx).Create(&ident).Error; err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	session, err := s.newSession(ctx, &ident)
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: SignedIn, Session: session})
	return session, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var ident models.Identity
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&ident).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.newSession(ctx, &ident)
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: SignedIn, Session: session})
	return session, nil
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	tokenHash := hashToken(refreshToken)
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
	if err != nil {
		return err
	}

	s.emit(Event{Kind: SignedOut})
	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	tokenHash := hashToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.WithContext(ctx).Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.WithContext(ctx).Model(&stored).Update("revoked", true)

	var ident models.Identity
	if err := s.db.WithContext(ctx).First(&ident, "id = ?", stored.IdentityID).Error; err != nil {
		return nil, ErrIdentityNotFound
	}

	return s.newSession(ctx, &ident)
}

func (s *Service) CurrentSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	var ident models.Identity
	if err := s.db.WithContext(ctx).First(&ident, "id = ?", sub).Error; err != nil {
		return nil, ErrIdentityNotFound
	}

	return &Session{
		User:        providerUser(&ident),
		AccessToken: accessToken,
	}, nil
}

func (s *Service) DeleteIdentity(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx.Where("identity_id = ?", id).Delete(&models.RefreshToken{})
		result := tx.Unscoped().Delete(&models.Identity{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrIdentityNotFound
		}
		return nil
	})
}

func (s *Service) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// emit dispatches synchronously so a subscriber's state transition completes
// before the triggering call returns. A later event always supersedes an
// earlier one; there is no parallel dispatch to race against.
func (s *Service) emit(event Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (s *Service) newSession(ctx context.Context, ident *models.Identity) (*Session, error) {
	accessToken, err := s.mintAccessToken(ident)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.mintRefreshToken(ctx, ident)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         providerUser(ident),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) mintAccessToken(ident *models.Identity) (string, error) {
	meta := unmarshalMetadata(ident.Metadata)
	claims := jwt.MapClaims{
		"sub":   ident.ID.String(),
		"email": ident.Email,
		"role":  roles.Parse(meta["role"]).String(),
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Service) mintRefreshToken(ctx context.Context, ident *models.Identity) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:         uuid.New(),
		IdentityID: ident.ID,
		TokenHash:  hashToken(rawToken),
		ExpiresAt:  time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func providerUser(ident *models.Identity) User {
	return User{
		ID:       ident.ID.String(),
		Email:    ident.Email,
		Metadata: unmarshalMetadata(ident.Metadata),
	}
}

func marshalMetadata(metadata map[string]string) datatypes.JSON {
	if len(metadata) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

func unmarshalMetadata(raw datatypes.JSON) map[string]string {
	meta := make(map[string]string)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &meta)
	}
	return meta
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
