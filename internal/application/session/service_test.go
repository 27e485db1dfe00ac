package session

import (
	"context"
	"errors"
	"testing"

	"github.com/go-push-registry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) FindByCredentials(ctx context.Context, user, password string) (*domain.Device, error) {
	args := m.Called(ctx, user, password)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Get(ctx context.Context, user, token string) (*domain.Device, error) {
	args := m.Called(ctx, user, token)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Put(ctx context.Context, d *domain.Device) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDeviceStore) FindActive(ctx context.Context, user, token string) ([]domain.Device, error) {
	args := m.Called(ctx, user, token)
	if ds, _ := args.Get(0).([]domain.Device); ds != nil {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Update(ctx context.Context, user, token string, updates map[string]interface{}) error {
	return m.Called(ctx, user, token, updates).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(user, token string) (string, error) {
	args := m.Called(user, token)
	return args.String(0), args.Error(1)
}

func loginReq() LoginRequest {
	return LoginRequest{Username: "alice", Password: "hunter2", Token: "tok-1"}
}

// --- Login ---

func TestLogin_MissingParams_NoStoreAccess(t *testing.T) {
	ds := &mockDeviceStore{}
	svc := NewService(ds, nil, nil)

	for _, req := range []LoginRequest{
		{Password: "p", Token: "t"},
		{Username: "u", Token: "t"},
		{Username: "u", Password: "p"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrBadRequest))
	}
	ds.AssertNotCalled(t, "FindByCredentials", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_WrongPassword_Unauthorized(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindByCredentials", mock.Anything, "alice", "hunter2").Return(nil, domain.ErrNotFound)

	svc := NewService(ds, nil, nil)
	_, err := svc.Login(context.Background(), loginReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	ds.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	ds.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_CredentialScanError_Propagates(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindByCredentials", mock.Anything, "alice", "hunter2").Return(nil, errors.New("connection reset"))

	svc := NewService(ds, nil, nil)
	_, err := svc.Login(context.Background(), loginReq())

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_ExistingToken_FlipsOnlyActive(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindByCredentials", mock.Anything, "alice", "hunter2").
		Return(&domain.Device{User: "alice", Token: "tok-0", Mail: "a@b.com"}, nil)
	ds.On("Get", mock.Anything, "alice", "tok-1").
		Return(&domain.Device{User: "alice", Token: "tok-1", Active: false}, nil)
	ds.On("Update", mock.Anything, "alice", "tok-1", map[string]interface{}{"active": true}).Return(nil)

	svc := NewService(ds, nil, nil)
	result, err := svc.Login(context.Background(), loginReq())

	require.NoError(t, err)
	assert.Equal(t, "alice", result.User)
	assert.Equal(t, "tok-1", result.Token)
	assert.False(t, result.NewDevice)
	ds.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	ds.AssertExpectations(t)
}

func TestLogin_NewToken_CreatesActiveRecordInheritingContactFields(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindByCredentials", mock.Anything, "alice", "hunter2").
		Return(&domain.Device{User: "alice", Token: "tok-0", Mail: "a@b.com", DeviceType: "android"}, nil)
	ds.On("Get", mock.Anything, "alice", "tok-1").Return(nil, domain.ErrNotFound)
	ds.On("Put", mock.Anything, mock.MatchedBy(func(d *domain.Device) bool {
		return d.User == "alice" && d.Token == "tok-1" && d.Active &&
			d.Mail == "a@b.com" && d.DeviceType == "android" && d.Password == "hunter2"
	})).Return(nil)

	svc := NewService(ds, nil, nil)
	result, err := svc.Login(context.Background(), loginReq())

	require.NoError(t, err)
	assert.True(t, result.NewDevice)
	ds.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ds.AssertExpectations(t)
}

func TestLogin_NewToken_SendsAlertEmail(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindByCredentials", mock.Anything, "alice", "hunter2").
		Return(&domain.Device{User: "alice", Token: "tok-0", Mail: "a@b.com"}, nil)
	ds.On("Get", mock.Anything, "alice", "tok-1").Return(nil, domain.ErrNotFound)
	ds.On("Put", mock.Anything, mock.Anything).Return(nil)

	ml := &mockMailer{}
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(ds, ml, nil)
	_, err := svc.Login(context.Background(), loginReq())

	require.NoError(t, err)
	ml.AssertExpectations(t)
}

func TestLogin_MailerFailure_DoesNotFailLogin(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindByCredentials", mock.Anything, "alice", "hunter2").
		Return(&domain.Device{User: "alice", Token: "tok-0", Mail: "a@b.com"}, nil)
	ds.On("Get", mock.Anything, "alice", "tok-1").Return(nil, domain.ErrNotFound)
	ds.On("Put", mock.Anything, mock.Anything).Return(nil)

	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := NewService(ds, ml, nil)
	_, err := svc.Login(context.Background(), loginReq())

	require.NoError(t, err)
}

func TestLogin_SignerPresent_IncludesBearer(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindByCredentials", mock.Anything, "alice", "hunter2").
		Return(&domain.Device{User: "alice", Token: "tok-0"}, nil)
	ds.On("Get", mock.Anything, "alice", "tok-1").
		Return(&domain.Device{User: "alice", Token: "tok-1"}, nil)
	ds.On("Update", mock.Anything, "alice", "tok-1", mock.Anything).Return(nil)

	sg := &mockSigner{}
	sg.On("Sign", "alice", "tok-1").Return("bearer-xyz", nil)

	svc := NewService(ds, nil, sg)
	result, err := svc.Login(context.Background(), loginReq())

	require.NoError(t, err)
	assert.Equal(t, "bearer-xyz", result.Bearer)
}

// --- Logout ---

func TestLogout_MissingParams_NoStoreAccess(t *testing.T) {
	ds := &mockDeviceStore{}
	svc := NewService(ds, nil, nil)

	_, err := svc.Logout(context.Background(), "", "tok-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = svc.Logout(context.Background(), "alice", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	ds.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogout_ActiveDevice_Deactivates(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindActive", mock.Anything, "alice", "tok-1").
		Return([]domain.Device{{User: "alice", Token: "tok-1", Active: true}}, nil)
	ds.On("Update", mock.Anything, "alice", "tok-1", map[string]interface{}{"active": false}).Return(nil)

	svc := NewService(ds, nil, nil)
	result, err := svc.Logout(context.Background(), "alice", "tok-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, result.Deactivated)
	ds.AssertExpectations(t)
}

func TestLogout_UnknownOrInactiveToken_NotFound(t *testing.T) {
	ds := &mockDeviceStore{}
	ds.On("FindActive", mock.Anything, "alice", "tok-9").Return([]domain.Device{}, nil)

	svc := NewService(ds, nil, nil)
	_, err := svc.Logout(context.Background(), "alice", "tok-9")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	ds.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
