package firestore

import (
	"fmt"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
)

func countValue(v any) (int, error) {
	switch value := v.(type) {
	case *firestorepb.Value:
		return int(value.GetIntegerValue()), nil
	case int64:
		return int(value), nil
	default:
		return 0, fmt.Errorf("unexpected count aggregation type %T", v)
	}
}
