package lambdaboot

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSM struct {
	calls []string
	value string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls = append(f.calls, aws.ToString(in.Name))
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(f.value)}}, nil
}

func TestLoadGeminiKey_PrefersEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	f := &fakeSSM{value: "from-ssm"}
	if got := LoadGeminiKey(context.Background(), f, "/p"); got != "from-env" {
		t.Errorf("key = %q", got)
	}
	if len(f.calls) != 0 {
		t.Error("SSM should not be called when the env var is set")
	}
}

func TestLoadGeminiKey_ReadsSSM(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	f := &fakeSSM{value: "from-ssm"}
	if got := LoadGeminiKey(context.Background(), f, "/photo-album/prod/gemini-api-key"); got != "from-ssm" {
		t.Errorf("key = %q", got)
	}
	if len(f.calls) != 1 || f.calls[0] != "/photo-album/prod/gemini-api-key" {
		t.Errorf("SSM calls = %v", f.calls)
	}
}
