// Package sim provides a scripted in-process authentication engine.
//
// Engine implements goHawcx.Bridge. Commands are acknowledged synchronously and
// their outcomes are emitted later, in call order, on a Sink: a *goHawcx.Hub for
// in-process use or a *redisrelay.Publisher to drive a remote client over Redis.
//
// The script:
//
//   - Authenticate emits otp_required.
//   - SubmitOTP with the valid code emits auth_success carrying an HS256 access
//     token (or authorization_code when AuthorizationCodeFlow is set). Any other
//     code emits otp_required until MaxOTPAttempts is reached, then
//     auth_error{otp_attempts_exceeded}.
//   - WebLogin and WebApprove emit session_success for the configured PIN or token,
//     session_error otherwise. GetDeviceDetails emits session_success.
//   - HandlePushNotification with a request_id key emits push_login_request.
//
// Every command except Initialize fails with a hawcx.sdk BridgeError until
// Initialize succeeds.
package sim
