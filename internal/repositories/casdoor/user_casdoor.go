package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
)

// CasdoorConfig holds the configuration for the Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type UserCasdoor struct {
	client *casdoorsdk.Client
	redis  *redis.Client
	config CasdoorConfig

	cachePrefix string
	cacheTTL    time.Duration
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &UserCasdoor{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "user:",
		cacheTTL:    15 * time.Minute,
	}
}

// ===== CACHE METHODS =====

func (u *UserCasdoor) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", u.cachePrefix, key)
}

func (u *UserCasdoor) getUserFromCache(ctx context.Context, key string) (*models.User, error) {
	if u.redis == nil {
		return nil, nil // Cache not available
	}

	data, err := u.redis.Get(ctx, u.getCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}
	return &user, nil
}

func (u *UserCasdoor) setUserCache(ctx context.Context, key string, user *models.User) error {
	if u.redis == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user for cache: %w", err)
	}
	return u.redis.Set(ctx, u.getCacheKey(key), data, u.cacheTTL).Err()
}

// ===== CONVERSION METHODS =====

func (u *UserCasdoor) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	return &models.User{
		ID:         casdoorUser.Id,
		FullName:   casdoorUser.DisplayName,
		Email:      casdoorUser.Email,
		Role:       u.convertCasdoorRolesToModel(casdoorUser),
		Department: u.getPropertyOrDefault(casdoorUser.Properties, "department", ""),
		Position:   u.getPropertyOrDefault(casdoorUser.Properties, "position", ""),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

func (u *UserCasdoor) convertCasdoorRolesToModel(casdoorUser *casdoorsdk.User) models.UserRole {
	// Directory admins map to the platform super admin regardless of any
	// other role assignments.
	if casdoorUser.IsAdmin {
		return models.RoleSuperAdmin
	}

	for _, casdoorRole := range casdoorUser.Roles {
		switch strings.ToLower(casdoorRole.Name) {
		case "super_admin", "superadmin":
			return models.RoleSuperAdmin
		}
	}

	seen := make(map[models.UserRole]bool)
	var roles []models.UserRole
	for _, casdoorRole := range casdoorUser.Roles {
		mapped := u.mapSingleCasdoorRoleToUserRole(casdoorRole.Name)
		if !seen[mapped] {
			roles = append(roles, mapped)
			seen[mapped] = true
		}
	}

	if seen[models.RoleHRAdmin] {
		return models.RoleHRAdmin
	}
	if seen[models.RoleManager] {
		return models.RoleManager
	}
	if len(roles) == 0 {
		return models.RoleCandidate // Default role
	}
	return roles[0]
}

func (u *UserCasdoor) mapSingleCasdoorRoleToUserRole(casdoorRole string) models.UserRole {
	switch strings.ToLower(casdoorRole) {
	case "candidate", "employee":
		return models.RoleCandidate
	case "manager", "team_lead":
		return models.RoleManager
	case "hr_admin", "hr":
		return models.RoleHRAdmin
	case "super_admin", "superadmin", "admin":
		return models.RoleSuperAdmin
	default:
		return models.RoleCandidate // Default role
	}
}

func (u *UserCasdoor) getPropertyOrDefault(properties map[string]string, key, defaultValue string) string {
	if value, exists := properties[key]; exists {
		return value
	}
	return defaultValue
}

// ===== READ OPERATIONS =====

// GetByID retrieves a user by ID
func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	if cachedUser, err := u.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user not found with ID %s: %w", id, repositories.ErrNotFound)
	}

	user := u.convertCasdoorUserToModel(casdoorUser)
	if user == nil {
		return nil, fmt.Errorf("failed to convert Casdoor user")
	}

	u.setUserCache(ctx, cacheKey, user)
	u.setUserCache(ctx, fmt.Sprintf("email:%s", user.Email), user)

	return user, nil
}

// GetRole retrieves the effective platform role for a user.
func (u *UserCasdoor) GetRole(ctx context.Context, id string) (models.UserRole, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
