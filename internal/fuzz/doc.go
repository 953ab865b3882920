// Package fuzztests houses Go fuzz harnesses for the checking pipeline
// (source -> lexer -> parser -> sema -> lower -> ownership). Arbitrary input
// must never panic or hang; it may only produce diagnostics.
//
// Назначение: прогонять произвольные байты через FileSet, лексер, парсер и
// весь driver.CheckSource.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
