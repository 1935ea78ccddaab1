package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	nhttp "github.com/chaos-io/bgcut/util/http"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DownloadImage 下载并解码图片
func DownloadImage(ctx context.Context, cli nhttp.IClient, url string) (image.Image, error) {
	var data []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: url,
		Method:     "GET",
		Response:   &data,
	}
	if err := cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}

	return DecodeImage(bytes.NewReader(data))
}

// OpenImage 打开本地图片
func OpenImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	return DecodeImage(file)
}

// DecodeImage 支持 png/jpeg/gif/bmp/tiff/webp
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DecodeConfig 只解析图片头部的尺寸和颜色模型
func DecodeConfig(r io.Reader) (image.Config, error) {
	conf, _, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("decode image config: %w", err)
	}
	return conf, nil
}

// EncodePNG 编码为 PNG（保留透明度）
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveImage 以 PNG 格式写入文件，自动创建目录
func SaveImage(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, img)
}
