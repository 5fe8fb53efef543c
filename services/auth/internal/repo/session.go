package repo

import (
	"context"

	"github.com/Skotchmaster/pokedex/services/auth/internal/models"
)

// SetTokens overwrites the stored pair, which invalidates any earlier session.
func (r *GormRepo) SetTokens(ctx context.Context, userID, access, refresh string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"last_access_token":  access,
			"last_refresh_token": refresh,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormRepo) ClearTokens(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"last_access_token":  nil,
			"last_refresh_token": nil,
		}).Error
}

// SetAccessTokenForRefresh records a new access token only while refresh is
// still the stored refresh token. It reports whether a row was updated.
func (r *GormRepo) SetAccessTokenForRefresh(ctx context.Context, refresh, access string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("last_refresh_token = ?", refresh).
		Update("last_access_token", access)
	return res.RowsAffected > 0, res.Error
}

// ClearTokensByRefresh logs out the user holding refresh. It reports whether
// a row was updated.
func (r *GormRepo) ClearTokensByRefresh(ctx context.Context, refresh string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("last_refresh_token = ?", refresh).
		Updates(map[string]any{
			"last_access_token":  nil,
			"last_refresh_token": nil,
		})
	return res.RowsAffected > 0, res.Error
}
