package json

import (
	"github.com/bytedance/sonic"
)

// API 是sonic的全局配置实例
var API = sonic.ConfigDefault

func init() {
	API = sonic.Config{
		UseNumber:   true,
		EscapeHTML:  false, // 标题和链接原样返回给聊天端
		SortMapKeys: false,
	}.Froze()
}

// Marshal 使用sonic序列化对象到JSON
func Marshal(v interface{}) ([]byte, error) {
	return API.Marshal(v)
}

// Unmarshal 使用sonic反序列化JSON到对象
func Unmarshal(data []byte, v interface{}) error {
	return API.Unmarshal(data, v)
}
