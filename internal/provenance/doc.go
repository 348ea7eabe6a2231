// Package provenance вычисляет provenance-хэши jobs в task-графе.
//
// Provenance-хэш — детерминированный digest, покрывающий все
// семантически значимые детерминанты результата job:
//   - execution descriptor (сырой текст команды/скрипта/wrapper)
//   - параметры (в канонической JSON-форме, отсортированные по ключу)
//   - содержимое внешних входных файлов (не производимых другими jobs)
//   - описание окружения (container reference, env-спецификация)
//   - хэши всех upstream jobs ("blockchain fashion")
//
// Хэш используется как ключ кэша артефактов: совпадение хэша означает,
// что результат job можно переиспользовать без выполнения. Детали
// запуска (потоки, ресурсы, абсолютные пути, время) в хэш не попадают.
//
// Результаты мемоизируются per-engine: job с несколькими downstream
// зависимыми хэшируется ровно один раз. Доступ к memo-таблице защищён
// single-flight дисциплиной, поэтому Engine безопасен для
// конкурентного использования.
package provenance
