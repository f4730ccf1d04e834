package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	gotName    string
	gotDecrypt bool
	out        *ssm.GetParameterOutput
	err        error
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.gotName = *in.Name
	f.gotDecrypt = *in.WithDecryption
	return f.out, f.err
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestGetParameter(t *testing.T) {
	value := "sk-secret"
	api := &fakeAPI{out: &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: &value}}}
	c, err := New(api)
	require.NoError(t, err)

	got, err := c.GetParameter(context.Background(), " /chatbot/openai-api-key ")
	require.NoError(t, err)
	require.Equal(t, "sk-secret", got)
	require.Equal(t, "/chatbot/openai-api-key", api.gotName)
	require.True(t, api.gotDecrypt)
}

func TestGetParameter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		api     *fakeAPI
		param   string
		wantErr string
	}{
		{"empty name", &fakeAPI{}, "  ", "name is required"},
		{"api error", &fakeAPI{err: errors.New("throttled")}, "/p", "throttled"},
		{"missing value", &fakeAPI{out: &ssm.GetParameterOutput{}}, "/p", "missing value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.api)
			require.NoError(t, err)
			_, err = c.GetParameter(context.Background(), tt.param)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
