package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// TextModulePrefix 解析文本模块
	TextModulePrefix = "text"

	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"
	// EntityPipelineLock 处理流程互斥锁实体
	EntityPipelineLock = "pipeline_lock"

	// KeyFileMD5Set 原始文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyParsedTextMD5Set 解析文本MD5集合 (SET)
	// 格式: app:text:dedup_set
	KeyParsedTextMD5Set = AppPrefix + ":" + TextModulePrefix + ":" + EntityDedupSet

	// KeyFileMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyFilePipelineLock 单个文件处理流程的互斥锁 (STRING, SETNX)
	// 格式: app:file:pipeline_lock:{md5}
	KeyFilePipelineLock = AppPrefix + ":" + FileModulePrefix + ":" + EntityPipelineLock + ":%s"
)
