package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shwepos/internal/database/models"
)

var ErrDeviceNotFound = errors.New("device not found")

type DeviceValidationError struct {
	Reason string
}

func (e *DeviceValidationError) Error() string {
	return "invalid device input: " + e.Reason
}

type RegisterDeviceRequest struct {
	OwnerID     int64   `json:"owner_id"`
	PushToken   string  `json:"push_token" binding:"required"`
	DeviceID    *string `json:"device_id,omitempty"`
	DeviceModel *string `json:"device_model,omitempty"`
}

type DevicePreferencesRequest struct {
	LowStockAlerts     *bool   `json:"low_stock_alerts,omitempty"`
	SalesNotifications *bool   `json:"sales_notifications,omitempty"`
	LowStockAlertTime  *string `json:"low_stock_alert_time,omitempty"`
}

// Registry manages push-capable devices. Registration is an upsert on the
// push token: the same device re-registering refreshes its row instead of
// duplicating it.
type Registry struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRegistry(db *gorm.DB, log *zap.Logger) *Registry {
	return &Registry{db: db, log: log}
}

func validExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") && strings.HasSuffix(token, "]")
}

func validAlertTime(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}

func (r *Registry) Register(ctx context.Context, req RegisterDeviceRequest) (*models.Device, error) {
	if !validExpoToken(req.PushToken) {
		return nil, &DeviceValidationError{Reason: "push_token is not an Expo push token"}
	}

	now := time.Now()
	device := models.Device{
		OwnerID:            req.OwnerID,
		PushToken:          req.PushToken,
		DeviceID:           req.DeviceID,
		DeviceModel:        req.DeviceModel,
		IsActive:           true,
		LastActive:         &now,
		LowStockAlerts:     true,
		SalesNotifications: true,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "push_token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"owner_id":     req.OwnerID,
			"device_id":    req.DeviceID,
			"device_model": req.DeviceModel,
			"is_active":    true,
			"last_active":  now,
			"updated_at":   now,
		}),
	}).Create(&device).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("push_token = ?", req.PushToken).
		First(&device).Error; err != nil {
		return nil, err
	}

	r.log.Info("device registered",
		zap.Int64("device_id", device.ID),
		zap.Int64("owner_id", device.OwnerID))
	return &device, nil
}

func (r *Registry) UpdatePreferences(ctx context.Context, deviceID int64, req DevicePreferencesRequest) (*models.Device, error) {
	updates := map[string]interface{}{}
	if req.LowStockAlerts != nil {
		updates["low_stock_alerts"] = *req.LowStockAlerts
	}
	if req.SalesNotifications != nil {
		updates["sales_notifications"] = *req.SalesNotifications
	}
	if req.LowStockAlertTime != nil {
		if *req.LowStockAlertTime != "" && !validAlertTime(*req.LowStockAlertTime) {
			return nil, &DeviceValidationError{Reason: "low_stock_alert_time must be HH:MM"}
		}
		updates["low_stock_alert_time"] = *req.LowStockAlertTime
	}
	if len(updates) == 0 {
		return nil, &DeviceValidationError{Reason: "no preferences to update"}
	}
	updates["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("id = ?", deviceID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDeviceNotFound
	}

	var device models.Device
	if err := r.db.WithContext(ctx).First(&device, deviceID).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *Registry) Deactivate(ctx context.Context, deviceID int64) error {
	res := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (r *Registry) ListForOwner(ctx context.Context, ownerID int64) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("last_active DESC NULLS LAST").
		Find(&devices).Error
	return devices, err
}
