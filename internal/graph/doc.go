// Package graph строит task-граф из WorkflowSpec.
//
// Включает:
//   - validate.go — валидация WorkflowSpec
//   - graph.go    — построение графа: producer-индекс, зависимости, toposort
//   - resolve.go  — разрешение execution descriptor (command/script/wrapper)
//
// Зависимости выводятся из файлов: job B зависит от job A, если A
// объявляет в outputs файл, который B объявляет в inputs. Циклические
// графы отклоняются на этапе построения.
package graph
