// Package cache реализует локальный кэш артефактов,
// адресуемый provenance-хэшами.
//
// Структура на диске:
//
//	{root}/
//	  {digest[0:2]}/
//	    {digest}        — содержимое единственного output файла job
//
// Кэш не знает про task-граф: он хранит и выдаёт файлы по digest.
// Вычисление ключей — ответственность пакета provenance.
package cache
