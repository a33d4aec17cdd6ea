package goHawcx

import "context"

// Bridge is the command surface of the authentication engine. Every method is a
// single external call whose return value is an acknowledgement, not the outcome of
// the operation: outcomes arrive later on the Hub's channels.
//
// Implementations signal native rejections with *BridgeError.
type Bridge interface {
	Initialize(ctx context.Context, cfg InitializeConfig) error
	Authenticate(ctx context.Context, userID string) error
	SubmitOTP(ctx context.Context, otp string) error
	StoreBackendOAuthTokens(ctx context.Context, userID, accessToken string, refreshToken *string) (bool, error)
	GetDeviceDetails(ctx context.Context) error
	WebLogin(ctx context.Context, pin string) error
	WebApprove(ctx context.Context, token string) error

	SetAPNsDeviceToken(ctx context.Context, tokenBase64 string) error
	SetFCMToken(ctx context.Context, token string) error
	UserDidAuthenticate(ctx context.Context) error
	HandlePushNotification(ctx context.Context, payload map[string]string) (bool, error)
	ApprovePushRequest(ctx context.Context, requestID string) error
	DeclinePushRequest(ctx context.Context, requestID string) error

	GetLastLoggedInUser(ctx context.Context) (string, error)
	ClearSessionTokens(ctx context.Context, userID string) error
	ClearUserKeychainData(ctx context.Context, userID string) error
}
