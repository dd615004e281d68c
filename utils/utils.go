package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/fatih/structs"
	"github.com/pkg/errors"

	"github.com/tantralabs/sena/logger"
)

// LoadENV reads a JSON object of string values from AWS Secrets Manager and
// exports every key as an environment variable. Existing variables are
// overwritten.
func LoadENV(ctx context.Context, secretName string, region string) error {
	secretFile, err := getSecret(ctx, secretName, region)
	if err != nil {
		return err
	}
	secret := make(map[string]interface{})
	if err := json.Unmarshal([]byte(secretFile), &secret); err != nil {
		return errors.Wrapf(err, "secret %s is not a json object", secretName)
	}
	for key, value := range secret {
		s, ok := value.(string)
		if !ok {
			s = fmt.Sprint(value)
		}
		logger.Debugf("Setting ENV: %s", key)
		os.Setenv(key, s)
	}
	return nil
}

func getSecret(ctx context.Context, secretName string, region string) (string, error) {
	sess, err := session.NewSession()
	if err != nil {
		return "", errors.Wrap(err, "aws session")
	}
	svc := secretsmanager.New(sess, aws.NewConfig().WithRegion(region))
	input := &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretName),
		VersionStage: aws.String("AWSCURRENT"),
	}

	result, err := svc.GetSecretValueWithContext(ctx, input)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			return "", errors.Errorf("get secret %s: %s: %s", secretName, aerr.Code(), aerr.Message())
		}
		return "", errors.Wrapf(err, "get secret %s", secretName)
	}

	if result.SecretString != nil {
		return *result.SecretString, nil
	}
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(result.SecretBinary)))
	n, err := base64.StdEncoding.Decode(decoded, result.SecretBinary)
	if err != nil {
		return "", errors.Wrap(err, "base64 decode secret")
	}
	return string(decoded[:n]), nil
}

// Clamp limits x to [min, max].
func Clamp(x float64, min float64, max float64) float64 {
	return math.Max(min, math.Min(x, max))
}

// ConstrainFloat Limit a float to min, max, and decimal places
func ConstrainFloat(x float64, min float64, max float64, decimals int) float64 {
	return ToFixed(Clamp(x, min, max), decimals)
}

// SumArr Get the sum of all elements in a slice
func SumArr(arr []float64) float64 {
	sum := 0.0
	for i := range arr {
		sum = sum + arr[i]
	}
	return sum
}

// IsFinite is false for NaN and both infinities.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// CreateKeyValuePairs make a string interface human readable. Keys are
// written in sorted order.
func CreateKeyValuePairs(m map[string]interface{}, ignoreLowerCase bool, oldBytes ...*bytes.Buffer) string {
	var b *bytes.Buffer
	if len(oldBytes) > 0 {
		b = oldBytes[0]
	} else {
		b = new(bytes.Buffer)
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprint(b, "\n{\n")
	for _, key := range keys {
		if key == "" {
			continue
		}
		value := m[key]
		firstLetter := string(key[0])
		if !ignoreLowerCase || strings.ToUpper(firstLetter) == firstLetter {
			rv := reflect.ValueOf(value)
			if rv.Kind() == reflect.Struct {
				fmt.Fprint(b, " ", key, ": ")
				CreateKeyValuePairs(structs.Map(value), ignoreLowerCase, b)
			} else {
				fmt.Fprint(b, " ", key, ": ", value, ",\n")
			}
		}
	}
	fmt.Fprint(b, "}\n")
	return b.String()
}

func round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func ToFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(round(num*output)) / output
}
