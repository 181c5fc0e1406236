package usecase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/infrastructure/firebase"
	"vendora/pkg/errors"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	carts        *CartUseCase
	logger       *zap.Logger
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, carts *CartUseCase, logger *zap.Logger) *AuthUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		carts:        carts,
		logger:       logger,
	}
}

type RegisterInput struct {
	Email          string
	Password       string
	DisplayName    string
	Phone          string
	Role           string
	VendorName     string
	GuestSessionID string
}

type AuthResult struct {
	User         *entity.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	Cart         *entity.Cart `json:"cart,omitempty"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role := input.Role
	if role == "" {
		role = entity.RoleCustomer
	}
	if role != entity.RoleCustomer && role != entity.RoleVendor {
		return nil, errors.Validation("role must be customer or vendor")
	}
	if role == entity.RoleVendor && strings.TrimSpace(input.VendorName) == "" {
		return nil, errors.Validation("vendor name is required")
	}

	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, errors.Conflict("Email already in use")
	}
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, input.DisplayName)
	if err != nil {
		return nil, errors.BadRequest("Failed to create account", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:          uid,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
		Role:        role,
		VendorName:  strings.TrimSpace(input.VendorName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if delErr := uc.firebaseAuth.DeleteUser(ctx, uid); delErr != nil {
			uc.logger.Error("failed to roll back auth user", zap.String("uid", uid), zap.Error(delErr))
		}
		return nil, err
	}

	pair, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, input.Email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	uc.logger.Info("user registered", zap.String("uid", uid), zap.String("role", role))
	return uc.result(ctx, user, pair, input.GuestSessionID), nil
}

// Login signs in with email and password and folds the caller's guest cart,
// if any, into the user's cart.
func (uc *AuthUseCase) Login(ctx context.Context, email, password, guestSessionID string) (*AuthResult, error) {
	pair, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		if !stderrors.Is(err, firebase.ErrInvalidCredentials) {
			uc.logger.Warn("sign-in failed", zap.Error(err))
		}
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	uid := pair.UID
	if uid == "" {
		if uid, err = uc.firebaseAuth.VerifyToken(ctx, pair.IDToken); err != nil {
			return nil, errors.Internal("Failed to verify token", err)
		}
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return uc.result(ctx, user, pair, guestSessionID), nil
}

func (uc *AuthUseCase) result(ctx context.Context, user *entity.User, pair *firebase.TokenPair, guestSessionID string) *AuthResult {
	res := &AuthResult{
		User:         user,
		Token:        pair.IDToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
	if guestSessionID != "" && uc.carts != nil {
		cart, err := uc.carts.Merge(ctx, user.ID, guestSessionID)
		if err != nil {
			uc.logger.Warn("cart merge at sign-in failed", zap.String("uid", user.ID), zap.Error(err))
		} else {
			res.Cart = cart
		}
	}
	return res
}

func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	pair, err := uc.firebaseAuth.RefreshIDToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid refresh token", err)
	}
	return &AuthResult{
		Token:        pair.IDToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}, nil
}

// Logout revokes every refresh token of the user. ID tokens already issued
// stay valid until they expire.
func (uc *AuthUseCase) Logout(ctx context.Context, uid string) error {
	if err := uc.firebaseAuth.RevokeSessions(ctx, uid); err != nil {
		return errors.Internal("Failed to sign out", err)
	}
	return nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// SetRole lets an admin provision staff accounts or change a user's role.
func (uc *AuthUseCase) SetRole(ctx context.Context, id, role, vendorName string) (*entity.User, error) {
	switch role {
	case entity.RoleCustomer, entity.RoleVendor, entity.RoleAdmin, entity.RoleCSA:
	default:
		return nil, errors.Validation("role must be customer, vendor, admin or csa")
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if vendorName != "" {
		user.VendorName = strings.TrimSpace(vendorName)
	}
	if role == entity.RoleVendor && user.VendorName == "" {
		return nil, errors.Validation("vendor name is required")
	}
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
