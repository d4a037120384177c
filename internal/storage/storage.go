package storage

import "mime/multipart"

// LogoFolder 公司 logo 的固定上传目录，合集目录名不得占用
const LogoFolder = "logos"

// Provider 上传文件落地的抽象，换对象存储时只动实现
type Provider interface {
	// SaveImage 校验并保存图片，返回可直接当 image_path 用的公开相对路径
	SaveImage(folder string, fh *multipart.FileHeader) (string, error)
	// Delete 按公开路径删除；非本地上传路径（外链等）静默跳过
	Delete(publicPath string) error
	EnsureFolder(folder string) error
	RemoveFolder(folder string) error
}
