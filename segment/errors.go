package segment

import "errors"

// ErrInvalidInput 输入尺寸为 0，或掩码与图像尺寸不一致
var ErrInvalidInput = errors.New("invalid input")
