package zqauth

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // 服务端签名协议指定 MD5
	"crypto/sha1" //nolint:gosec // 服务端签名协议指定 SHA1
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"sort"
	"strings"
)

// =============================================================================
// 回调签名
// =============================================================================

// Signer 回调数据签名器。
// 签名与数据加入顺序无关：计算时先对数据字典序排序，
// 再按分隔符连接后取 SHA1。
type Signer struct {
	delimiter []byte
	data      [][]byte
}

// NewSigner 创建签名器，delimiter 为连接分隔符（通常为空）。
func NewSigner(delimiter string) *Signer {
	return &Signer{delimiter: []byte(delimiter)}
}

// AddData 添加参与签名的数据。
func (s *Signer) AddData(data ...string) {
	for _, d := range data {
		s.data = append(s.data, []byte(d))
	}
}

// Signature 计算当前数据的签名（十六进制小写）。
func (s *Signer) Signature() string {
	sort.Slice(s.data, func(i, j int) bool {
		return bytes.Compare(s.data[i], s.data[j]) < 0
	})
	sum := sha1.Sum(bytes.Join(s.data, s.delimiter)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// CheckSignature 校验服务端回调签名。
// token 为回调配置的 token，signature/timestamp/nonce 来自回调请求。
// 签名不一致时返回 ErrInvalidSignature。
func CheckSignature(token, signature, timestamp, nonce string) error {
	signer := NewSigner("")
	signer.AddData(token, timestamp, nonce)
	if signer.Signature() != signature {
		return ErrInvalidSignature
	}
	return nil
}

// CheckRequestSignature 校验前端上送的 rawData 签名。
// 算法为 sha1(rawData + sessionKey)，与微信小程序数据签名一致。
func CheckRequestSignature(sessionKey, rawData, clientSignature string) error {
	sum := sha1.Sum([]byte(rawData + sessionKey)) //nolint:gosec
	if hex.EncodeToString(sum[:]) != clientSignature {
		return ErrInvalidSignature
	}
	return nil
}

// =============================================================================
// 参数签名
// =============================================================================

// FormatURL 将参数按 key 字典序排列成 "k=v&k=v" 形式的待签名串。
// 值为空的参数被跳过；apiKey 非空时以 "key={apiKey}" 追加在末尾。
func FormatURL(params map[string]string, apiKey string) []byte {
	keys := make([]string, 0, len(params))
	for k := range params {
		if params[k] != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	if apiKey != "" {
		pairs = append(pairs, "key="+apiKey)
	}
	return []byte(strings.Join(pairs, "&"))
}

// CalculateSignature 计算参数的 MD5 签名（十六进制大写）。
func CalculateSignature(params map[string]string, apiKey string) string {
	sum := md5.Sum(FormatURL(params, apiKey)) //nolint:gosec
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// CalculateSignatureHMAC 计算参数的 HMAC-SHA256 签名（十六进制大写）。
func CalculateSignatureHMAC(params map[string]string, apiKey string) string {
	h := hmac.New(sha256.New, []byte(apiKey))
	h.Write(FormatURL(params, apiKey))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

// CheckParamSignature 校验带 sign 字段的参数签名。
// 取出 sign 后按其余参数重算 MD5 签名比对。
func CheckParamSignature(params map[string]string, apiKey string) bool {
	rest := make(map[string]string, len(params))
	for k, v := range params {
		if k != "sign" {
			rest[k] = v
		}
	}
	return params["sign"] == CalculateSignature(rest, apiKey)
}

// =============================================================================
// 杂项
// =============================================================================

const randomStringCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString 生成指定长度的随机字符串（字母和数字），用作 nonce。
func RandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = randomStringCharset[rand.IntN(len(randomStringCharset))]
	}
	return string(b)
}

// Nonce 生成默认长度（16）的随机 nonce。
func Nonce() string {
	return RandomString(16)
}
