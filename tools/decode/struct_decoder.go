package decode

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DecodeMap 把 map 载荷解码为强类型结构体（json tag、弱类型转换、RFC3339 时间）
func DecodeMap(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	return dec.Decode(input)
}
