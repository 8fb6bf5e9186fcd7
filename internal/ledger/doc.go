// Package ledger — долговременный реестр сломанных лотов.
//
// Лот попадает в ledger, когда сага не смогла откатиться: часть
// удалённых ресурсов осталась в промежуточных статусах, и автоматика
// больше не имеет права его трогать. Запись снимается двумя путями:
//
//   - worker видит лот с ревизией, отличной от сохранённой — удалённое
//     состояние изменилось после поломки, запись разрешается и лот
//     обрабатывается заново;
//   - оператор разбирает лот руками и снимает запись через
//     concierge-cli.
//
// Хранилище — Postgres: одна строка на лот, upsert атомарен, поэтому
// конкурирующая запись не требует ручного read-modify-write цикла.
package ledger
