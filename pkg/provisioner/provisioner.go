package provisioner

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// GetOrCreate 幂等地物化一条"最多存在一行"的记录。
//
// 并发首次访问时两个调用方都可能查不到记录并同时尝试创建，
// 底层存储的唯一约束保证只有一个成功；输掉竞争的一方靠重查拿到
// 胜者创建的行。本包不做任何加锁，正确性完全依赖唯一约束的原子性。
//
// lookup 返回 found=false 表示记录不存在（而不是返回错误）。
// create 因唯一约束冲突失败时会重查一次；其它创建错误原样上抛。
func GetOrCreate(ctx context.Context, lookup LookupFunc, create CreateFunc) (uint, error) {
	id, found, err := lookup(ctx)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}

	id, err = create(ctx)
	if err == nil {
		return id, nil
	}
	if !IsUniqueViolation(err) {
		return 0, err
	}

	// 另一个调用方赢得了创建竞争，重查一次取它的行
	id, found, err = lookup(ctx)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("provisioner: record missing after duplicate-key create: %w", ErrRaceLost)
	}
	return id, nil
}

// LookupFunc 按键查找资源，found=false 表示不存在
type LookupFunc func(ctx context.Context) (id uint, found bool, err error)

// CreateFunc 创建资源并返回其主键
type CreateFunc func(ctx context.Context) (id uint, err error)

// ErrRaceLost 表示创建因唯一约束冲突失败后重查仍未找到记录，
// 只会在胜者的行又被删除这类异常情形下出现。
var ErrRaceLost = errors.New("get-or-create race lost and relookup failed")

const mysqlDuplicateEntry = 1062

// IsUniqueViolation 判断错误是否为唯一约束冲突。
// 同时识别 gorm 的翻译错误和 MySQL 驱动的原生错误码。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}
