package cognitoclient

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/smithy-go"
)

// CognitoInterface is the slice of the identity provider the clinic relies on.
type CognitoInterface interface {
	SetUserEnabled(ctx context.Context, username string, enabled bool) error
}

type adminAPI interface {
	AdminEnableUser(ctx context.Context, params *cognitoidentityprovider.AdminEnableUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminEnableUserOutput, error)
	AdminDisableUser(ctx context.Context, params *cognitoidentityprovider.AdminDisableUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDisableUserOutput, error)
}

type Client struct {
	api        adminAPI
	userPoolID string
}

// InitCognitoClient builds a client from the default AWS credential chain.
// An empty userPoolID yields a Noop client.
func InitCognitoClient(ctx context.Context, region, userPoolID string) (CognitoInterface, error) {
	if userPoolID == "" {
		return Noop{}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Client{api: cognitoidentityprovider.NewFromConfig(cfg), userPoolID: userPoolID}, nil
}

// SetUserEnabled enables or disables sign-in for username.
// Users unknown to the pool are ignored.
func (c *Client) SetUserEnabled(ctx context.Context, username string, enabled bool) error {
	var err error
	if enabled {
		_, err = c.api.AdminEnableUser(ctx, &cognitoidentityprovider.AdminEnableUserInput{
			UserPoolId: aws.String(c.userPoolID),
			Username:   aws.String(username),
		})
	} else {
		_, err = c.api.AdminDisableUser(ctx, &cognitoidentityprovider.AdminDisableUserInput{
			UserPoolId: aws.String(c.userPoolID),
			Username:   aws.String(username),
		})
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "UserNotFoundException" {
		return nil
	}
	return err
}

// Noop is used when no user pool is configured.
type Noop struct{}

func (Noop) SetUserEnabled(context.Context, string, bool) error { return nil }
